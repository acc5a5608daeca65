package editor

import (
	"time"

	"github.com/aretw0/pagecraft/pkg/schema"
)

// Export renders the project as a JSON export envelope.
func (s *Session) Export(now time.Time) ([]byte, error) {
	return schema.Export(s.Project(), now)
}

// Import validates raw and, only if it is valid as a whole, replaces the
// project with it. Validation failures match domain.ErrImportValidation and
// list every offending field.
func (s *Session) Import(raw []byte) error {
	data, err := schema.Import(raw)
	if err != nil {
		s.logger.Warn("import rejected", "project_id", s.projectID, "err", err)
		return err
	}
	s.ReplaceProject(data)
	return nil
}
