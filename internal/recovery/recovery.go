// Package recovery classifies import/export failures into follow-up
// actions and keeps advisory checkpoints for long-running operations.
package recovery

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"
	"time"

	"github.com/Iceblockp/mobile-pos-sub001/internal/errors"
	"github.com/Iceblockp/mobile-pos-sub001/internal/id"
	"github.com/Iceblockp/mobile-pos-sub001/internal/logger"
)

// Action is what the pipeline should do after a failure.
type Action string

const (
	// ActionRetry means the operation may succeed if attempted again,
	// typically after a constraint conflict resolves.
	ActionRetry Action = "retry"
	// ActionSkip means the failing record should be dropped and the run
	// should continue.
	ActionSkip Action = "skip"
	// ActionAbort means the run cannot usefully continue.
	ActionAbort Action = "abort"
)

// Classify maps an error to a follow-up action by its category and
// message, not its concrete type: snapshots cross process lifetimes, so
// errors often arrive re-wrapped or stringified.
//
// Missing-file errors abort, constraint violations retry, validation
// failures skip. Anything unrecognized aborts; guessing on an unknown
// failure risks corrupting a partially imported store.
func Classify(err error) Action {
	if err == nil {
		return ActionSkip
	}

	var domainErr *errors.Error
	if stderrors.As(err, &domainErr) {
		switch domainErr.Code {
		case errors.CodeValidation:
			return ActionSkip
		case errors.CodeAlreadyExists, errors.CodeConflict:
			return ActionRetry
		case errors.CodeNotFound:
			return ActionAbort
		}
	}
	if stderrors.Is(err, fs.ErrNotExist) {
		return ActionAbort
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "no such file"),
		strings.Contains(msg, "file not found"),
		strings.Contains(msg, "cannot find"):
		return ActionAbort
	case strings.Contains(msg, "already exists"),
		strings.Contains(msg, "constraint"),
		strings.Contains(msg, "conflict"),
		strings.Contains(msg, "duplicate"):
		return ActionRetry
	case strings.Contains(msg, "validation"),
		strings.Contains(msg, "invalid"),
		strings.Contains(msg, "required"):
		return ActionSkip
	default:
		return ActionAbort
	}
}

// Checkpoint is a named restore point recorded during a long operation.
type Checkpoint struct {
	ID        string         `json:"id"`
	Operation string         `json:"operation"`
	Payload   map[string]any `json:"payload,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// Checkpoints keeps restore points in memory for the lifetime of the
// process. Rollback is advisory bookkeeping: it marks the position to
// resume from but performs no store mutation, because batches already
// committed are the accepted partial-failure unit.
type Checkpoints struct {
	mu     sync.Mutex
	points []Checkpoint
	logger *logger.Logger
}

// NewCheckpoints creates an empty checkpoint log.
func NewCheckpoints(log *logger.Logger) *Checkpoints {
	return &Checkpoints{logger: log}
}

// Create records a checkpoint and returns its ID.
func (c *Checkpoints) Create(operation string, payload map[string]any) (string, error) {
	token, err := id.Token()
	if err != nil {
		return "", fmt.Errorf("checkpoint id: %w", err)
	}
	cp := Checkpoint{
		ID:        fmt.Sprintf("checkpoint_%d_%s", time.Now().UnixMilli(), token),
		Operation: operation,
		Payload:   payload,
		CreatedAt: time.Now(),
	}

	c.mu.Lock()
	c.points = append(c.points, cp)
	c.mu.Unlock()

	c.logger.Debug("checkpoint created", "id", cp.ID, "operation", operation)
	return cp.ID, nil
}

// List returns all checkpoints, oldest first.
func (c *Checkpoints) List() []Checkpoint {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Checkpoint(nil), c.points...)
}

// Rollback drops the named checkpoint and everything recorded after it.
func (c *Checkpoints) Rollback(checkpointID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, cp := range c.points {
		if cp.ID == checkpointID {
			c.points = c.points[:i]
			c.logger.Info("rolled back to checkpoint", "id", checkpointID)
			return nil
		}
	}
	return errors.NotFoundf("checkpoint %s not found", checkpointID)
}

// Clear drops all checkpoints, typically after a run completes.
func (c *Checkpoints) Clear() {
	c.mu.Lock()
	c.points = nil
	c.mu.Unlock()
}
