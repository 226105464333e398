package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShHaWkK/SpootifyCLI/model"
)

func TestBestAlternativePicksClosestWithPreview(t *testing.T) {
	candidates := []model.RemoteTrack{
		{Name: "Karma Police", Artists: []string{"Radiohead"}, PreviewURL: ""},
		{Name: "Karma Police (Remastered)", Artists: []string{"Radiohead"}, PreviewURL: "https://p.example/karma"},
		{Name: "Completely Different Song", Artists: []string{"Someone Else"}, PreviewURL: "https://p.example/other"},
	}

	alt := BestAlternative(candidates, "Karma Police", "Radiohead")
	require.NotNil(t, alt)
	assert.Equal(t, "https://p.example/karma", alt.PreviewURL)
}

func TestBestAlternativeIgnoresPreviewlessExactMatch(t *testing.T) {
	candidates := []model.RemoteTrack{
		{Name: "Paranoid Android", Artists: []string{"Radiohead"}, PreviewURL: ""},
	}
	assert.Nil(t, BestAlternative(candidates, "Paranoid Android", "Radiohead"))
}

func TestBestAlternativeRejectsDissimilar(t *testing.T) {
	candidates := []model.RemoteTrack{
		{Name: "Wonderwall", Artists: []string{"Oasis"}, PreviewURL: "https://p.example/ww"},
	}
	assert.Nil(t, BestAlternative(candidates, "Bohemian Rhapsody", "Queen"))
}

func TestBestAlternativeEmptyInput(t *testing.T) {
	assert.Nil(t, BestAlternative(nil, "Anything", "Anyone"))
}
