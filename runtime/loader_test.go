package runtime

import (
	"meet-lab/errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

func TestCensoredLoader_LoadAll(t *testing.T) {
	req := require.New(t)
	fsys := fstest.MapFS{
		"censored/en.txt":    {Data: []byte("badger\r\nsnake\n\n")},
		"censored/fr.txt":    {Data: []byte("blaireau\nbadger\n")},
		"censored/README.md": {Data: []byte("not a list")},
	}

	// When the lists are loaded
	data, err := NewCensoredLoader(fsys).LoadAll("censored")

	// Then words are merged without duplicates
	req.NoError(err)
	req.ElementsMatch([]string{"en", "fr"}, data.Languages)
	req.ElementsMatch([]string{"badger", "snake", "blaireau"}, data.Words)
}

func TestCensoredLoader_Empty(t *testing.T) {
	req := require.New(t)

	_, err := NewCensoredLoader(fstest.MapFS{"censored/en.txt": {Data: []byte("\n")}}).LoadAll("censored")
	req.ErrorIs(err, errors.ErrEmptyWords)

	_, err = NewCensoredLoader(fstest.MapFS{"censored/sub/en.txt": {Data: []byte("x")}}).LoadAll("censored")
	req.ErrorIs(err, errors.ErrOnlyCensoredFiles)
}

func TestCensoredLoader_Embedded(t *testing.T) {
	req := require.New(t)

	data, err := NewCensoredLoader(censoredFolder).LoadAll("censored")

	req.NoError(err)
	req.Contains(data.Languages, "en")
	req.NotEmpty(data.Words)
}
