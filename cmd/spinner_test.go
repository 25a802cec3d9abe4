package cmd

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpinnerShowsLabelUntilWorkFinishes(t *testing.T) {
	release := make(chan struct{})
	work := func() tea.Msg {
		<-release
		return spinnerDoneMsg{}
	}

	tm := teatest.NewTestModel(t, newSpinnerModel("Refreshing tokens...", work), teatest.WithInitialTermSize(80, 24))

	teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
		return bytes.Contains(out, []byte("Refreshing tokens..."))
	}, teatest.WithDuration(2*time.Second))
	close(release)

	tm.WaitFinished(t, teatest.WithFinalTimeout(2*time.Second))
	final, ok := tm.FinalModel(t).(spinnerModel)
	require.True(t, ok)
	assert.True(t, final.done)
	assert.NoError(t, final.err)
	assert.Empty(t, final.View())
}

func TestRunWithSpinnerReturnsWorkError(t *testing.T) {
	boom := errors.New("refresh failed")
	output := &bytes.Buffer{}

	err := runWithSpinner(context.Background(), output, "Refreshing tokens", func(_ context.Context, status func(string)) error {
		status("[1/1] [42_Ann]")
		return boom
	})

	require.ErrorIs(t, err, boom)
}

func TestSpinnerShowsCurrentAccount(t *testing.T) {
	release := make(chan struct{})
	work := func() tea.Msg {
		<-release
		return spinnerDoneMsg{}
	}

	tm := teatest.NewTestModel(t, newSpinnerModel("Refreshing tokens", work), teatest.WithInitialTermSize(80, 24))
	tm.Send(spinnerStatusMsg("[2/3] [42_Ann]"))

	teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
		return bytes.Contains(out, []byte("[2/3] [42_Ann]"))
	}, teatest.WithDuration(2*time.Second))
	close(release)

	tm.WaitFinished(t, teatest.WithFinalTimeout(2*time.Second))
	final, ok := tm.FinalModel(t).(spinnerModel)
	require.True(t, ok)
	assert.Equal(t, "[2/3] [42_Ann]", final.status)
}
