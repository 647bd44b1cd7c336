package helper

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// NewSessionID mints the identifier attached to one chat session's logs.
func NewSessionID() string {
	return uuid.NewString()
}

// PrettyPrint dumps v as indented JSON to stdout.
func PrettyPrint(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Warn().Err(err).Msg("Error pretty printing")
		return
	}
	fmt.Println(string(b))
}

// CreateFolder makes dir (and parents) if absent.
func CreateFolder(dir string) error {
	return os.MkdirAll(dir, 0o755)
}
