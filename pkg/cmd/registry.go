// Package cmd provides common initialization functions for command-line
// applications.
package cmd

import (
	"log/slog"

	"github.com/medgate/medgate/pkg/knowledge"
	"github.com/medgate/medgate/pkg/protocol"
	"github.com/medgate/medgate/pkg/registry"
	"github.com/medgate/medgate/pkg/tasks"
)

// NewRegistry builds the task catalog with every built-in task registered.
// A nil knowledge base falls back to the curated default entries.
func NewRegistry(logger *slog.Logger, kb protocol.KnowledgeBase) *registry.Registry {
	if kb == nil {
		kb = knowledge.NewBase(knowledge.DefaultEntries())
	}

	reg := registry.NewRegistry(logger)
	reg.RegisterTask(&tasks.MetadataTaskFactory{})
	reg.RegisterTask(&tasks.EditorialTaskFactory{})
	reg.RegisterTask(&tasks.ComplianceTaskFactory{})
	reg.RegisterTask(tasks.NewAccuracyTaskFactory(kb))
	reg.RegisterTask(&tasks.EmptyTagTaskFactory{})

	return reg
}
