package presentation

import (
	"go.uber.org/multierr"

	"github.com/zjrosen/magicmove/internal/emit"
	"github.com/zjrosen/magicmove/internal/host"
)

// TransitionDTO is a transition as printed by 'magicmove plan'.
type TransitionDTO struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`

	emit.Transition `yaml:",inline"`

	// Warnings replaces the error chain with its messages.
	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// FromTransition converts a transition between two payloads.
func FromTransition(from, to host.Payload, tr emit.Transition) TransitionDTO {
	dto := TransitionDTO{From: from.Path, To: to.Path, Transition: tr}
	for _, w := range multierr.Errors(tr.Warnings) {
		dto.Warnings = append(dto.Warnings, w.Error())
	}
	return dto
}
