package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gametext/internal/language"
	"gametext/internal/model"
)

func TestBuildLabelNodes(t *testing.T) {
	t.Parallel()

	var start, plain model.MultiEntry
	start.Label = "GUI:Start"
	start.Put(language.US, model.NewText("Start"), "start.wav")
	start.Put(language.UK, model.NewText("Start"), "")
	start.Put(language.German, model.NewText("Starten"), "")
	plain.Label = "NoCategory"
	plain.Put(language.French, model.NewText("Rien"), "")

	nodes := BuildLabelNodes([]model.MultiEntry{start, plain})
	require.Len(t, nodes, 2)

	assert.Equal(t, "GUI", nodes[0].Category)
	assert.Equal(t, []Translation{
		{Code: "US", Name: language.NameFor(language.US), Text: "Start", Speech: "start.wav"},
		{Code: "DE", Name: language.NameFor(language.German), Text: "Starten"},
	}, nodes[0].Translations)

	assert.Empty(t, nodes[1].Category)
	require.Len(t, nodes[1].Translations, 1)
	assert.Equal(t, "FR", nodes[1].Translations[0].Code)
}
