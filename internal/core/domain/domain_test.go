package domain_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/permc/internal/core/domain"
)

func TestCompileErrorMatchesSentinel(t *testing.T) {
	err := error(&domain.CompileError{Diagnostics: []domain.Diagnostic{
		{File: "Main.java", Line: 12, Message: "unknown type"},
		{Message: "no entry point"},
	}})

	assert.ErrorIs(t, err, domain.ErrCompilationFailed)
	assert.Contains(t, err.Error(), "Main.java:12: unknown type")
	assert.Contains(t, err.Error(), "no entry point")
}

func TestResourceExhaustedIsNotCompilationFailure(t *testing.T) {
	err := error(&domain.ResourceExhaustedError{Resource: "nodes", Limit: 10, Used: 11})

	assert.NotErrorIs(t, err, domain.ErrCompilationFailed)
	var re *domain.ResourceExhaustedError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, int64(10), re.Limit)
}

func TestInternalCompilerErrorTrail(t *testing.T) {
	cause := errors.New("boom")
	err := &domain.InternalCompilerError{Cause: cause, Trail: []string{"app.Main", "app.Main::run()"}}

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "internal compiler error at app.Main > app.Main::run(): boom", err.Error())
}

func TestParseOutputMode(t *testing.T) {
	tests := []struct {
		in      string
		want    domain.OutputMode
		wantErr bool
	}{
		{in: "pretty", want: domain.OutputModePretty},
		{in: " OBFUSCATED ", want: domain.OutputModeObfuscated},
		{in: "Detailed", want: domain.OutputModeDetailed},
		{in: "verbose", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := domain.ParseOutputMode(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidOptions)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompileOptionsValidate(t *testing.T) {
	opts := domain.DefaultCompileOptions()
	require.NoError(t, opts.Validate())
	assert.False(t, opts.IsDraft())
	assert.True(t, opts.SplittingEnabled())

	opts.MaxOptimizeIterations = 0
	assert.ErrorIs(t, opts.Validate(), domain.ErrInvalidOptions)

	opts = domain.DefaultCompileOptions()
	opts.SoycExtra = true
	assert.ErrorIs(t, opts.Validate(), domain.ErrInvalidOptions)

	opts = domain.DefaultCompileOptions()
	opts.OptimizationLevel = domain.OptimizationLevelDraft
	assert.True(t, opts.IsDraft())
}

func TestPermutationAnswer(t *testing.T) {
	p := domain.Permutation{
		Properties: []domain.PropertySet{{"locale": "fr", "user.agent": "gecko"}},
		Answers:    map[string]string{"app.Greeter": "app.FrenchGreeter"},
	}

	assert.Equal(t, "app.FrenchGreeter", p.Answer("app.Greeter"))
	assert.Equal(t, "app.Other", p.Answer("app.Other"))
	assert.Equal(t, "locale=fr,user.agent=gecko", p.Label())
	assert.Equal(t, "default", domain.Permutation{}.Label())
}

func TestRebindRuleMatches(t *testing.T) {
	rule := domain.RebindRule{Request: "a.R", Answer: "a.Fr", When: map[string]string{"locale": "fr"}}

	assert.True(t, rule.Matches(domain.PropertySet{"locale": "fr", "ua": "x"}))
	assert.False(t, rule.Matches(domain.PropertySet{"locale": "en"}))
	assert.True(t, domain.RebindRule{Request: "a.R", Answer: "a.X"}.Matches(nil))
}

func TestPermutationStatusTerminal(t *testing.T) {
	assert.False(t, domain.PermutationStatusPending.IsTerminal())
	assert.False(t, domain.PermutationStatusRunning.IsTerminal())
	assert.True(t, domain.PermutationStatusCompleted.IsTerminal())
	assert.True(t, domain.PermutationStatusFailed.IsTerminal())
	assert.True(t, domain.PermutationStatusCancelled.IsTerminal())
	assert.Equal(t, domain.LogLevelWarn, domain.ParseLogLevel("WARNING"))
	assert.Equal(t, domain.LogLevelInfo, domain.ParseLogLevel("loud"))
}
