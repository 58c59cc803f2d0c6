package exam

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDoc() *Document {
	d := New("Kinematics")
	return d.AppendItems(
		NewQuestion(`A car accelerates at \(2\,m/s^2\). Find v after 3 s.`,
			[OptionCount]string{"2 m/s", "4 m/s", "6 m/s", "8 m/s"}, 2, "v = at"),
		&TextBlock{Content: "Section B"},
		NewQuestion("Unit of force?", [OptionCount]string{"J", "N", "W", "Pa"}, 1, ""),
	)
}

func TestNextID(t *testing.T) {
	assert.Equal(t, 1, New("x").NextID())
	d := sampleDoc()
	assert.Equal(t, []int{1, 2, 3}, d.IDs())
	assert.Equal(t, 4, d.NextID())

	d, err := d.DeleteItem(2)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, d.IDs())
	assert.Equal(t, 4, d.NextID())
}

func TestOpsDoNotMutateInput(t *testing.T) {
	d := sampleDoc()
	before, err := Marshal(d)
	require.NoError(t, err)

	_, err = d.DeleteItem(1)
	require.NoError(t, err)
	_, err = d.MoveItem(0, 2)
	require.NoError(t, err)
	_, _, err = d.DuplicateItem(3)
	require.NoError(t, err)
	_, err = d.UpdateQuestion(1, func(q *Question) { q.Prompt = "changed" })
	require.NoError(t, err)
	d.AddBlankQuestions(3)

	after, err := Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestCloneIsDeep(t *testing.T) {
	d := sampleDoc()
	q := d.Items[0].(*Question)
	q.Image = &ImageRef{Source: "a.png", Width: 10}

	c := d.Clone()
	cq := c.Items[0].(*Question)
	cq.Image.Width = 99
	cq.Options[0] = "zzz"

	assert.Equal(t, 10, q.Image.Width)
	assert.Equal(t, "2 m/s", q.Options[0])
}

func TestAddBlankQuestions(t *testing.T) {
	d := sampleDoc().AddBlankQuestions(2)
	require.Len(t, d.Items, 5)
	for _, it := range d.Items[3:] {
		q, ok := it.(*Question)
		require.True(t, ok)
		assert.Equal(t, [OptionCount]string{}, q.Options)
		assert.Equal(t, 0, q.Correct)
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5}, d.IDs())
	assert.True(t, d.AnswerKeyStale)
}

func TestDuplicateInsertsAfterSource(t *testing.T) {
	d, newID, err := sampleDoc().DuplicateItem(1)
	require.NoError(t, err)
	assert.Equal(t, 4, newID)
	assert.Equal(t, []int{1, 4, 2, 3}, d.IDs())

	src := d.Items[0].(*Question)
	dup := d.Items[1].(*Question)
	assert.Equal(t, src.Prompt, dup.Prompt)
	assert.Equal(t, src.Options, dup.Options)
}

func TestMoveItem(t *testing.T) {
	tests := []struct {
		name     string
		from, to int
		want     []int
	}{
		{"first to last", 0, 2, []int{2, 3, 1}},
		{"last to first", 2, 0, []int{3, 1, 2}},
		{"adjacent", 1, 2, []int{1, 3, 2}},
		{"same", 1, 1, []int{1, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := sampleDoc().MoveItem(tt.from, tt.to)
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.IDs())
		})
	}
}

func TestMoveItemOutOfRange(t *testing.T) {
	_, err := sampleDoc().MoveItem(0, 3)
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))
	_, err = sampleDoc().MoveItem(-1, 0)
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))
}

func TestUnknownID(t *testing.T) {
	d := sampleDoc()
	_, err := d.DeleteItem(42)
	assert.ErrorIs(t, err, ErrItemNotFound)
	_, err = d.ReplaceItem(42, &TextBlock{})
	assert.ErrorIs(t, err, ErrItemNotFound)
	_, _, err = d.DuplicateItem(42)
	assert.ErrorIs(t, err, ErrItemNotFound)
	_, err = d.FindQuestion(2)
	assert.ErrorIs(t, err, ErrNotQuestion)
}

func TestReplaceItemKeepsIDAndValidates(t *testing.T) {
	d, err := sampleDoc().ReplaceItem(3, &Question{ID: 77, Prompt: `\(x`, Correct: 9})
	require.NoError(t, err)
	q := d.Items[2].(*Question)
	assert.Equal(t, 3, q.ID)
	assert.Equal(t, 0, q.Correct)
	assert.NotEmpty(t, q.ValidationError)
	assert.True(t, d.HasInvalid())
}

func TestApplyAnswerKey(t *testing.T) {
	d := sampleDoc()
	require.True(t, d.AnswerKeyStale)

	d = d.ApplyAnswerKey([]AnswerKeyEntry{
		{ID: 1, Correct: 3, Explanation: "recomputed"},
		{ID: 2, Correct: 1, Explanation: "text block is skipped"},
		{ID: 99, Correct: 1},
		{ID: 3, Correct: 7},
	})
	assert.False(t, d.AnswerKeyStale)
	q1, _ := d.FindQuestion(1)
	assert.Equal(t, 3, q1.Correct)
	assert.Equal(t, "recomputed", q1.Explanation)
	q3, _ := d.FindQuestion(3)
	assert.Equal(t, 1, q3.Correct)
	tb, _ := d.Find(2)
	assert.Equal(t, "Section B", tb.(*TextBlock).Content)
}

func TestQuestionNumberSkipsTextBlocks(t *testing.T) {
	d := sampleDoc()
	assert.Equal(t, 1, d.QuestionNumber(1))
	assert.Equal(t, 0, d.QuestionNumber(2))
	assert.Equal(t, 2, d.QuestionNumber(3))
	assert.Len(t, d.Questions(), 2)
}
