package prompt

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
)

// StringList stores a set of short string labels as a JSON array column.
type StringList []string

// Value serialises the list for storage. An empty list is stored as "[]"
// rather than NULL so json_each can always expand the column.
func (l StringList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}

	data, err := json.Marshal([]string(l))
	if err != nil {
		return nil, eris.Wrap(err, "encoding tag list")
	}

	return string(data), nil
}

// Scan decodes the stored JSON array back into the list.
func (l *StringList) Scan(value any) error {
	if value == nil {
		*l = nil
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return eris.Errorf("unsupported tags column type %T", value)
	}

	if len(data) == 0 {
		*l = nil
		return nil
	}

	if err := json.Unmarshal(data, (*[]string)(l)); err != nil {
		return eris.Wrap(err, "decoding tag list")
	}

	return nil
}

// Prompt represents a catalog entry persisted in the database.
type Prompt struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Title     string     `gorm:"size:512" json:"title"`
	Content   string     `gorm:"type:text" json:"content"`
	Category  string     `gorm:"size:255;index:idx_prompts_category" json:"category"`
	Tags      StringList `gorm:"type:text" json:"tags"`
	CreatedAt time.Time  `json:"created_at"`
}

// TableName defines the table name for the Prompt model.
func (Prompt) TableName() string {
	return "prompts"
}
