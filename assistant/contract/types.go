package contract

import "fmt"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Turn is one message in a conversation. Turns are immutable once created;
// the orchestrator only appends new ones, it never rewrites history.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

func UserTurn(content string) Turn {
	return Turn{Role: RoleUser, Content: content}
}

func AssistantTurn(content string) Turn {
	return Turn{Role: RoleAssistant, Content: content}
}

func SystemTurn(content string) Turn {
	return Turn{Role: RoleSystem, Content: content}
}

// ProductFilter is the sparse set of catalog constraints inferred from a
// conversation. A nil field means "no constraint"; there is no way to express
// a null-valued key.
type ProductFilter struct {
	Category   *string  `json:"category,omitempty"`
	Department *string  `json:"department,omitempty"`
	Brand      *string  `json:"brand,omitempty"`
	MaxPrice   *float64 `json:"max_price,omitempty"`
}

func (f ProductFilter) IsEmpty() bool {
	return f.Category == nil && f.Department == nil && f.Brand == nil && f.MaxPrice == nil
}

// CatalogRecord is a read-only projection of a product row.
type CatalogRecord struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Brand       string  `json:"brand"`
	Department  string  `json:"department"`
	RetailPrice float64 `json:"retail_price"`
}

// Line renders the record the way it is shown to the model during
// augmentation: "name (brand): $price".
func (r CatalogRecord) Line() string {
	return fmt.Sprintf("%s (%s): $%.2f", r.Name, r.Brand, r.RetailPrice)
}

// GenOptions carries the per-call generation knobs. The draft/final calls use
// a moderate temperature and a generous token budget; the extraction call uses
// zero temperature and a small budget.
type GenOptions struct {
	Temperature float64
	MaxTokens   int
}
