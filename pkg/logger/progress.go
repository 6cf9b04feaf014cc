package logger

import (
	"time"
)

// OperationLogger logs the steps of one named operation and its final
// outcome with the elapsed time
type OperationLogger struct {
	logger    Logger
	operation string
	fields    Fields
	startTime time.Time
	steps     int
}

// NewOperationLogger creates a new operation logger
func NewOperationLogger(operation string, logger Logger) *OperationLogger {
	if logger == nil {
		logger = GetGlobalLogger()
	}

	ol := &OperationLogger{
		logger:    logger,
		operation: operation,
		fields:    make(Fields),
		startTime: time.Now(),
	}

	ol.logger.WithField("operation", operation).Debug("Starting operation")
	return ol
}

// WithField adds a field to the operation context
func (ol *OperationLogger) WithField(key string, value interface{}) *OperationLogger {
	ol.fields[key] = value
	return ol
}

// WithFields returns a copy of the operation logger carrying the extra fields.
// The receiver is left unchanged so a final summary can add fields without
// leaking them into later steps.
func (ol *OperationLogger) WithFields(fields Fields) *OperationLogger {
	clone := *ol
	clone.fields = ol.merge(fields)
	return &clone
}

// Elapsed returns the time since the operation started
func (ol *OperationLogger) Elapsed() time.Duration {
	return time.Since(ol.startTime)
}

// Step logs a step within the operation
func (ol *OperationLogger) Step(step string) {
	ol.steps++
	ol.logger.WithFields(ol.merge(Fields{
		"step":        step,
		"step_number": ol.steps,
	})).Info("Operation step")
}

// Success completes the operation successfully
func (ol *OperationLogger) Success(message string) {
	ol.logger.WithFields(ol.merge(Fields{
		"duration": ol.Elapsed().String(),
		"status":   "success",
	})).Info(message)
}

// Error completes the operation with an error
func (ol *OperationLogger) Error(err error, message string) {
	ol.logger.WithError(err).WithFields(ol.merge(Fields{
		"duration": ol.Elapsed().String(),
		"status":   "error",
	})).Error(message)
}

// Warning logs a warning during the operation
func (ol *OperationLogger) Warning(message string) {
	ol.logger.WithFields(ol.merge(nil)).Warn(message)
}

func (ol *OperationLogger) merge(extra Fields) Fields {
	fields := Fields{"operation": ol.operation}
	for k, v := range ol.fields {
		fields[k] = v
	}
	for k, v := range extra {
		fields[k] = v
	}
	return fields
}

// TimedOperation executes a function and logs timing information
func TimedOperation(operation string, logger Logger, fn func() error) error {
	ol := NewOperationLogger(operation, logger)

	if err := fn(); err != nil {
		ol.Error(err, "Operation failed")
		return err
	}

	ol.Success("Operation completed")
	return nil
}
