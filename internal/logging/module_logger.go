package logging

import (
	"context"

	"github.com/goliatone/go-sectionform/pkg/interfaces"
)

const (
	rootModule         = "sectionform"
	contractsModule    = "sectionform.contracts"
	formModule         = "sectionform.form"
	contentModule      = "sectionform.content"
	httpModule         = "sectionform.http"
	orchestratorModule = "sectionform.orchestrator"
	catalogModule      = "sectionform.catalog"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The module identifier is
// attached as a structured field.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// ContractsLogger returns the logger namespace reserved for the contract registry.
func ContractsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, contractsModule)
}

// FormLogger returns the logger namespace reserved for edit sessions.
func FormLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, formModule)
}

// ContentLogger returns the logger namespace reserved for section persistence.
func ContentLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, contentModule)
}

// HTTPLogger returns the logger namespace reserved for the admin API.
func HTTPLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, httpModule)
}

// OrchestratorLogger returns the logger namespace reserved for the orchestrator.
func OrchestratorLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, orchestratorModule)
}

// CatalogLogger returns the logger namespace reserved for contract loading.
func CatalogLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, catalogModule)
}

// NoOp returns a logger that drops every entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
