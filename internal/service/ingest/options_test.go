package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Taichi-iskw/yt-trend/internal/errors"
)

func validOptions() Options {
	opts := DefaultOptions()
	opts.Channels = []string{"@good"}
	opts.StartDate = "2024-05-01"
	opts.EndDate = "2024-05-10"
	opts.APIKey = "key"
	return opts
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	assert.Equal(t, 3, opts.VideosPerChannel)
	assert.True(t, opts.GetTranscripts)
	assert.Equal(t, 8*time.Second, opts.TranscriptTimeout)
	assert.Empty(t, opts.Channels)
}

func TestOptions_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Options)
		wantErr bool
	}{
		{name: "valid", modify: func(o *Options) {}},
		{name: "same start and end", modify: func(o *Options) { o.EndDate = o.StartDate }},
		{name: "no channels", modify: func(o *Options) { o.Channels = nil }, wantErr: true},
		{name: "only blank channels", modify: func(o *Options) { o.Channels = []string{" ", "\t"} }, wantErr: true},
		{name: "missing api key", modify: func(o *Options) { o.APIKey = "  " }, wantErr: true},
		{name: "bad start date", modify: func(o *Options) { o.StartDate = "05/01/2024" }, wantErr: true},
		{name: "bad end date", modify: func(o *Options) { o.EndDate = "2024-13-01" }, wantErr: true},
		{name: "start after end", modify: func(o *Options) { o.StartDate = "2024-05-11" }, wantErr: true},
		{name: "zero videos per channel", modify: func(o *Options) { o.VideosPerChannel = 0 }, wantErr: true},
		{name: "zero timeout", modify: func(o *Options) { o.TranscriptTimeout = 0 }, wantErr: true},
		{
			name: "zero timeout ignored in quick mode",
			modify: func(o *Options) {
				o.GetTranscripts = false
				o.TranscriptTimeout = 0
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := validOptions()
			tt.modify(&opts)

			err := opts.Validate()

			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, errors.CodeInvalidArg, errors.CodeOf(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestOptions_ValidateTrimsChannels(t *testing.T) {
	opts := validOptions()
	opts.Channels = []string{"  @a ", "", "@a"}

	plan, err := opts.Plan()

	require.NoError(t, err)
	// duplicates are kept and processed independently
	assert.Equal(t, []string{"@a", "@a"}, plan.Channels)
}
