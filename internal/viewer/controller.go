package viewer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"lathe/internal/jobs"
	"lathe/internal/logging"
	"lathe/internal/onshape"
	"lathe/internal/poller"
	"lathe/internal/report"
	"lathe/internal/scene"
)

var (
	// ErrSelection indicates the chosen option carries no element parameters.
	ErrSelection = errors.New("selection has no element parameters")
	// ErrServerReported indicates the translation service reported a failure
	// in a terminal job body.
	ErrServerReported = errors.New("translation failed")
)

// State is the selection controller's lifecycle state.
type State string

const (
	StateIdle       State = "idle"
	StateLoading    State = "loading"
	StateDisplaying State = "displaying"
	StateError      State = "error"
)

// Options configures a Controller.
type Options struct {
	DocumentID   string
	WorkspaceID  string
	PollInterval time.Duration
}

// Status is a point-in-time view of the controller for API clients.
type Status struct {
	State      State  `json:"state"`
	Generation uint64 `json:"generation"`
	Selected   string `json:"selected,omitempty"`
}

// Controller sequences selections into translation jobs and scene loads.
type Controller struct {
	client *onshape.Client
	scene  *scene.Manager
	errs   *report.State
	store  *jobs.Store
	logger *slog.Logger

	documentID   string
	workspaceID  string
	pollInterval time.Duration

	mu         sync.Mutex
	state      State
	generation uint64
	options    []Option
	selected   string
}

// NewController builds an idle controller. The jobs store may be nil; job
// history is then not recorded.
func NewController(client *onshape.Client, sceneMgr *scene.Manager, errs *report.State, store *jobs.Store, logger *slog.Logger, opts Options) *Controller {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 2 * time.Second
	}
	return &Controller{
		client:       client,
		scene:        sceneMgr,
		errs:         errs,
		store:        store,
		logger:       logging.NewComponentLogger(logger, "selection-controller"),
		documentID:   opts.DocumentID,
		workspaceID:  opts.WorkspaceID,
		pollInterval: opts.PollInterval,
		state:        StateIdle,
	}
}

// Select applies the option at index. The context must outlive the selection's
// poll loop; callers pass the process context, not a request context.
//
// Every valid selection bumps the generation before anything else, so a
// pending poll from an earlier selection can no longer have a visible effect
// even while the new request is still in flight.
func (c *Controller) Select(ctx context.Context, index int) error {
	c.mu.Lock()
	if index < 0 || index >= len(c.options) {
		c.mu.Unlock()
		return fmt.Errorf("option index %d out of range: %w", index, ErrSelection)
	}
	option := c.options[index]
	c.generation++
	generation := c.generation
	c.selected = option.Label
	c.scene.Clear()

	if option.Placeholder {
		c.state = StateIdle
		c.selected = ""
		c.mu.Unlock()
		c.logger.Info("selection cleared", logging.Int64(logging.FieldGeneration, int64(generation)))
		return nil
	}
	if !option.Translatable() {
		c.state = StateError
		c.mu.Unlock()
		c.errs.Display(fmt.Sprintf("element %q cannot be translated", option.Label))
		return fmt.Errorf("option %q: %w", option.Label, ErrSelection)
	}
	c.state = StateLoading
	c.mu.Unlock()

	translation, err := c.client.StartTranslation(ctx, onshape.TranslationRequest{
		DocumentID:  c.documentID,
		WorkspaceID: c.workspaceID,
		ElementID:   option.ElementID,
		PartID:      option.PartID,
	})
	if err != nil {
		c.failIfCurrent(generation, err.Error())
		return err
	}

	var jobID int64
	if c.store != nil {
		record, err := c.store.Insert(ctx, translation.ID, generation, option.Label)
		if err != nil {
			c.logger.Warn("record job", logging.Error(err))
		} else {
			jobID = record.ID
		}
	}

	c.logger.Info("translation started",
		logging.String(logging.FieldJobID, translation.ID),
		logging.String(logging.FieldElement, option.Label),
		logging.Int64(logging.FieldGeneration, int64(generation)))

	driver := &poller.Driver[onshape.JobStatus]{
		Interval: c.pollInterval,
		Fetch: func(ctx context.Context) (onshape.JobStatus, error) {
			return c.client.TranslationStatus(ctx, translation.ID)
		},
		Terminal: func(status onshape.JobStatus) bool { return !status.Pending },
		Done: func(status onshape.JobStatus) {
			c.complete(ctx, generation, jobID, status.Body)
		},
		Fail: func(err error) {
			c.pollFailed(ctx, generation, jobID, err)
		},
	}
	go driver.Run(ctx)
	return nil
}

// complete handles a terminal poll body. The generation comparison and every
// scene mutation happen inside one critical section, so a newer selection
// cannot slip in between the check and the load.
func (c *Controller) complete(ctx context.Context, generation uint64, jobID int64, body []byte) {
	serverErr := serverReportedError(body)

	c.mu.Lock()
	if generation != c.generation {
		c.mu.Unlock()
		c.logger.Info("discarding stale translation result",
			logging.Int64(logging.FieldGeneration, int64(generation)))
		c.markJob(ctx, jobID, jobs.StatusSuperseded, "")
		return
	}

	if serverErr != "" {
		c.state = StateError
		c.mu.Unlock()
		c.errs.Display(serverErr)
		c.logger.Error("translation failed", logging.String("reason", serverErr))
		c.markJob(ctx, jobID, jobs.StatusFailed, serverErr)
		return
	}

	if err := c.scene.Load(body); err != nil {
		c.state = StateError
		c.mu.Unlock()
		c.errs.Display(err.Error())
		c.markJob(ctx, jobID, jobs.StatusFailed, err.Error())
		return
	}
	c.state = StateDisplaying
	c.mu.Unlock()
	c.logger.Info("model displayed", logging.Int64(logging.FieldGeneration, int64(generation)))
	c.markJob(ctx, jobID, jobs.StatusComplete, "")
}

func (c *Controller) pollFailed(ctx context.Context, generation uint64, jobID int64, err error) {
	c.mu.Lock()
	stale := generation != c.generation
	if !stale {
		c.state = StateError
	}
	c.mu.Unlock()

	if stale {
		c.markJob(ctx, jobID, jobs.StatusSuperseded, "")
		return
	}
	c.errs.Display(err.Error())
	c.logger.Error("translation poll failed", logging.Error(err))
	c.markJob(ctx, jobID, jobs.StatusFailed, err.Error())
}

func (c *Controller) failIfCurrent(generation uint64, message string) {
	c.mu.Lock()
	if generation != c.generation {
		c.mu.Unlock()
		return
	}
	c.state = StateError
	c.mu.Unlock()
	c.errs.Display(message)
}

func (c *Controller) markJob(ctx context.Context, jobID int64, status jobs.Status, message string) {
	if c.store == nil || jobID == 0 {
		return
	}
	var err error
	switch status {
	case jobs.StatusComplete:
		err = c.store.MarkComplete(ctx, jobID)
	case jobs.StatusFailed:
		err = c.store.MarkFailed(ctx, jobID, message)
	case jobs.StatusSuperseded:
		err = c.store.MarkSuperseded(ctx, jobID)
	}
	if err != nil {
		c.logger.Warn("update job record", logging.Error(err))
	}
}

// serverReportedError extracts the error field from a terminal body, if any.
func serverReportedError(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Error
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Generation returns the current selection generation.
func (c *Controller) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// Status returns a snapshot for the status API.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Status{State: c.state, Generation: c.generation, Selected: c.selected}
}
