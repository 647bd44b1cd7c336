package helper_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realty-rag/internal/helper"
)

func TestNewSessionID(t *testing.T) {
	a := helper.NewSessionID()
	b := helper.NewSessionID()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}

func TestCreateFolder(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data", "vector_db")
	require.NoError(t, helper.CreateFolder(dir))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
