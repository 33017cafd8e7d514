package renderer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"news-shorts/config"
	"news-shorts/renderer"
)

func TestAllocatorOptionsExtendDefaults(t *testing.T) {
	cfg := config.BrowserConfig{ChromePath: "/opt/chrome"}
	headless := renderer.AllocatorOptions(cfg, true)
	visible := renderer.AllocatorOptions(cfg, false)

	assert.Greater(t, len(headless), 10)
	assert.Equal(t, len(headless), len(visible))

	empty := renderer.AllocatorOptions(config.BrowserConfig{}, true)
	assert.Equal(t, len(headless), len(empty))
}
