package service

import (
	"time"

	"github.com/wricardo/askouija/game/engine"
)

// User-facing messages
const (
	MsgNewQuestion      = "New question for the spirits!\n%s"
	MsgOneBoard         = "Channels can only fit one Ouija board at a time."
	MsgNoBoard          = "There isn't a board through which you can speak."
	MsgCapitalsOnly     = "The mortals can only receive capital letters."
	MsgIncomprehensible = "The mortals won't be able to comprehend this."
	MsgSpoken           = "The spirits have spoken!\n> %s"
)

// Reasons a letter or goodbye was not accepted
const (
	ReasonNotUppercase     = "not_uppercase"
	ReasonIncomprehensible = "incomprehensible"
)

// BoardInfo provides information about a board
type BoardInfo struct {
	ID          string          `json:"id"`
	ChannelID   string          `json:"channel_id"`
	Question    string          `json:"question"`
	Dictionary  string          `json:"dictionary"`
	CreatedAt   time.Time       `json:"created_at"`
	LastUpdated time.Time       `json:"last_updated"`
	State       engine.Snapshot `json:"state"`
	Message     string          `json:"message,omitempty"`
}

// TellResult contains the outcome of offering one letter
type TellResult struct {
	Accepted bool       `json:"accepted"`
	Letter   string     `json:"letter"`
	Reason   string     `json:"reason,omitempty"`
	Message  string     `json:"message"`
	Board    *BoardInfo `json:"board,omitempty"`
}

// GoodbyeResult contains the outcome of closing a board
type GoodbyeResult struct {
	Done    bool       `json:"done"`
	Words   []string   `json:"words,omitempty"`
	Answer  string     `json:"answer,omitempty"`
	Reason  string     `json:"reason,omitempty"`
	Message string     `json:"message"`
	Board   *BoardInfo `json:"board,omitempty"`
}

// DictionaryInfo describes a named dictionary
type DictionaryInfo struct {
	Name    string `json:"name"`
	Words   int    `json:"words"`
	Default bool   `json:"default"`
	Source  string `json:"source,omitempty"`
}

// ListOptions configures board listing
type ListOptions struct {
	Sort  string `json:"sort"`  // "created" or "updated"
	Order string `json:"order"` // "asc" or "desc"
	Limit int    `json:"limit"`
}
