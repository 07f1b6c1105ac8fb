package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/student-lookup/internal/lookup"
	"github.com/aanand-mishra/student-lookup/internal/types"
)

// fakeController answers every submit with next and records the input.
type fakeController struct {
	input     string
	submitted []string
	next      lookup.State
}

func (f *fakeController) SetInput(text string) { f.input = text }

func (f *fakeController) SubmitInput(context.Context) lookup.State {
	f.submitted = append(f.submitted, f.input)
	return f.next
}

func (f *fakeController) State() lookup.State { return lookup.State{} }

func (f *fakeController) Observe(func(lookup.State)) {}

func typeText(m tea.Model, text string) tea.Model {
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return m
}

func TestEnterSubmitsFieldText(t *testing.T) {
	want := lookup.State{
		Status:     lookup.StatusSuccess,
		Generation: 1,
		Student:    &types.Student{ID: "r1", SID: "S1", Name: "Li Hua", College: "CS", Major: "SE"},
	}
	ctrl := &fakeController{next: want}

	var m tea.Model = New(ctrl, "S202411132")
	m = typeText(m, " S1 ")
	assert.Equal(t, " S1 ", ctrl.input)

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	msg := cmd()
	assert.Equal(t, []string{" S1 "}, ctrl.submitted)
	assert.Equal(t, StateMsg(want), msg)

	m, _ = m.Update(msg)
	view := m.View()
	assert.Contains(t, view, "Li Hua")
	assert.Contains(t, view, "CS")
	assert.Contains(t, view, "SE")
}

func TestEscQuits(t *testing.T) {
	m := New(&fakeController{}, "S1")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)

	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}

func TestViewStates(t *testing.T) {
	tests := []struct {
		name     string
		state    lookup.State
		contains []string
		excludes []string
	}{
		{
			name:     "idle",
			state:    lookup.State{},
			contains: []string{"Student Records Lookup", "S202411132"},
			excludes: []string{"Searching..."},
		},
		{
			name:     "loading hides old content",
			state:    lookup.State{Status: lookup.StatusLoading, Generation: 1},
			contains: []string{"Searching..."},
			excludes: []string{lookup.MessageNotFound, "College"},
		},
		{
			name:     "not found",
			state:    lookup.State{Status: lookup.StatusNotFound, Kind: lookup.KindNotFound, Message: lookup.MessageNotFound, Generation: 1},
			contains: []string{"No student with this ID"},
			excludes: []string{"Searching...", "College"},
		},
		{
			name:     "store error",
			state:    lookup.State{Status: lookup.StatusFailed, Kind: lookup.KindStore, Message: lookup.MessageStoreError, Generation: 1},
			contains: []string{"Lookup failed."},
			excludes: []string{"College"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m tea.Model = New(&fakeController{}, "S202411132")
			m, _ = m.Update(StateMsg(tt.state))

			view := m.View()
			for _, s := range tt.contains {
				assert.Contains(t, view, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, view, s)
			}
		})
	}
}

func TestStaleStateMsgIsIgnored(t *testing.T) {
	var m tea.Model = New(&fakeController{}, "S1")

	done := lookup.State{Status: lookup.StatusNotFound, Kind: lookup.KindNotFound, Message: lookup.MessageNotFound, Generation: 2}
	m, _ = m.Update(StateMsg(done))

	// A Loading snapshot of the same submit, delivered late.
	m, _ = m.Update(StateMsg(lookup.State{Status: lookup.StatusLoading, Generation: 2}))
	assert.NotContains(t, m.View(), "Searching...")

	// A result of an older submit.
	m, _ = m.Update(StateMsg(lookup.State{Status: lookup.StatusSuccess, Generation: 1, Student: &types.Student{Name: "Old"}}))
	assert.NotContains(t, m.View(), "Old")
	assert.Contains(t, m.View(), "No student with this ID")
}
