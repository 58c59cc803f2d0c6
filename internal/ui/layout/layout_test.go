package layout

import (
	"strings"
	"testing"

	"charm.land/lipgloss/v2"
	"github.com/stretchr/testify/assert"
)

func TestIsTooSmall(t *testing.T) {
	assert.True(t, IsTooSmall(79, 40))
	assert.True(t, IsTooSmall(120, 23))
	assert.False(t, IsTooSmall(80, 24))
}

func TestRenderHeader(t *testing.T) {
	h := RenderHeader("Kinematics", "12 Q · 2 pages", 100)
	assert.Contains(t, h, "PhysExam")
	assert.Contains(t, h, "Kinematics")
	assert.Contains(t, h, "12 Q · 2 pages")
	assert.Equal(t, 3, lipgloss.Height(h))
}

func TestRenderFooter(t *testing.T) {
	f := RenderFooter([]KeyHint{{Key: "u", Description: "Undo"}, {Key: "r", Description: "Redo"}}, 80)
	assert.Contains(t, f, "Undo")
	assert.True(t, strings.Index(f, "Undo") < strings.Index(f, "Redo"))
}
