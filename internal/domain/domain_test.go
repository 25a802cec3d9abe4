package domain

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTaskFilters(t *testing.T) {
	t.Parallel()

	tasks := []Task{
		{ID: 1, Title: "Subscribe"},
		{ID: 2, Title: "Binance x TON"},
		{ID: 3, Title: "Boost channel"},
		{ID: 4, Title: "Status Purchase"},
	}

	deny := DenyList{"One-time Stars Purchase", "Binance x TON", "Status Purchase"}
	assert.Equal(t, []Task{{ID: 1, Title: "Subscribe"}, {ID: 3, Title: "Boost channel"}}, deny.Select(tasks))

	allow := AllowList{"Boost channel", "Unknown", "Subscribe"}
	assert.Equal(t, []Task{{ID: 3, Title: "Boost channel"}, {ID: 1, Title: "Subscribe"}}, allow.Select(tasks))
	assert.Equal(t, []string{"Unknown"}, allow.Missing(tasks))
}

func TestParseTitleListDropsBlankLines(t *testing.T) {
	t.Parallel()

	got := ParseTitleList("Subscribe\r\n\r\n  \nBoost channel\n")
	assert.Equal(t, AllowList{"Subscribe", "Boost channel"}, got)
}

func TestOutcomeString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "success", Outcome{Kind: OutcomeSuccess}.String())
	assert.Equal(t, "fatal_failure (status 418)", Outcome{Kind: OutcomeFatal, StatusCode: 418}.String())
	assert.Equal(t, "fatal_failure: boom", Outcome{Kind: OutcomeFatal, Err: errors.New("boom")}.String())
	assert.True(t, Outcome{Kind: OutcomeSuccess}.OK())
	assert.Equal(t, "cooldown", OutcomeAlreadyCompleted.Label())
}

func TestRunReportCount(t *testing.T) {
	t.Parallel()

	report := RunReport{Accounts: []AccountReport{
		{Results: []ActionResult{{Outcome: Outcome{Kind: OutcomeSuccess}}, {Outcome: Outcome{Kind: OutcomeFatal}}}},
		{Results: []ActionResult{{Outcome: Outcome{Kind: OutcomeSuccess}}}},
	}}

	assert.Equal(t, 2, report.Count(OutcomeSuccess))
	assert.Equal(t, 1, report.Count(OutcomeFatal))
	assert.Equal(t, 0, report.Count(OutcomeTransient))
}

func TestAccountStateTokenLastWriteWins(t *testing.T) {
	t.Parallel()

	state := NewAccountState(AccountEntry{Raw: "user=%7B%22id%22%3A1%7D"})

	var wg sync.WaitGroup
	for _, token := range []string{"a", "b", "c"} {
		wg.Add(1)
		go func(token string) {
			defer wg.Done()
			state.SetToken(token)
		}(token)
	}
	wg.Wait()

	assert.Contains(t, []string{"a", "b", "c"}, state.Token())
	state.SetToken("final")
	assert.Equal(t, "final", state.Token())
	assert.Equal(t, "[1_No name]", state.Label())
}
