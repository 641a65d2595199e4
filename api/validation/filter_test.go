package validation

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediaTracker/tracker/models"
)

func TestParseFilter(t *testing.T) {
	f, err := ParseFilter(url.Values{})
	require.NoError(t, err)
	assert.Nil(t, f.Type)
	assert.Nil(t, f.Status)

	f, err = ParseFilter(url.Values{"type": {"video"}, "status": {"processing"}})
	require.NoError(t, err)
	require.NotNil(t, f.Type)
	require.NotNil(t, f.Status)
	assert.Equal(t, models.TaskTypeVideo, *f.Type)
	assert.Equal(t, models.StatusProcessing, *f.Status)

	_, err = ParseFilter(url.Values{"type": {"gif"}})
	assert.ErrorIs(t, err, ErrInvalidTaskType)

	_, err = ParseFilter(url.Values{"status": {"done"}})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}
