package service

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetMaxUploadMBAdjustsTheLimit(t *testing.T) {
	defer SetMaxUploadMB(defaultMaxUploadMB)

	content := append(wavBytes(), bytes.Repeat([]byte{0x00}, 1<<20)...)

	SetMaxUploadMB(1)
	_, err := readAudioFile(buildFileHeader(t, "answer.wav", content))
	require.ErrorIs(t, err, ErrFileTooLarge)

	SetMaxUploadMB(defaultMaxUploadMB)
	media, err := readAudioFile(buildFileHeader(t, "answer.wav", content))
	require.NoError(t, err)
	require.Equal(t, ".wav", media.extension)
}

func TestSetMaxUploadMBIgnoresNonPositiveValues(t *testing.T) {
	defer SetMaxUploadMB(defaultMaxUploadMB)

	SetMaxUploadMB(0)
	SetMaxUploadMB(-2)

	_, err := readAudioFile(buildFileHeader(t, "answer.wav", wavBytes()))
	require.NoError(t, err)
}
