package detector_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/permc/internal/adapters/detector"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		isTTY    bool
		ci       string
		expected detector.Mode
	}{
		{name: "terminal", isTTY: true, expected: detector.ModeTUI},
		{name: "CI=true forces log mode", isTTY: true, ci: "true", expected: detector.ModeLog},
		{name: "CI=1 forces log mode", isTTY: true, ci: "1", expected: detector.ModeLog},
		{name: "CI=false keeps the terminal", isTTY: true, ci: "false", expected: detector.ModeTUI},
		{name: "no terminal", isTTY: false, expected: detector.ModeLog},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, detector.Detect(tt.isTTY, tt.ci))
		})
	}
}

func TestDetectEnvironment_CI(t *testing.T) {
	t.Setenv("CI", "true")
	assert.Equal(t, detector.ModeLog, detector.DetectEnvironment())
}

func TestResolveMode(t *testing.T) {
	tests := []struct {
		flag     string
		auto     detector.Mode
		expected detector.Mode
	}{
		{flag: "on", auto: detector.ModeLog, expected: detector.ModeTUI},
		{flag: "ON", auto: detector.ModeLog, expected: detector.ModeTUI},
		{flag: "off", auto: detector.ModeTUI, expected: detector.ModeLog},
		{flag: "auto", auto: detector.ModeTUI, expected: detector.ModeTUI},
		{flag: "", auto: detector.ModeLog, expected: detector.ModeLog},
		{flag: "bogus", auto: detector.ModeLog, expected: detector.ModeLog},
	}

	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			assert.Equal(t, tt.expected, detector.ResolveMode(tt.auto, tt.flag))
		})
	}
}
