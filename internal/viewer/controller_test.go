package viewer_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"lathe/internal/gltf"
	"lathe/internal/jobs"
	"lathe/internal/onshape"
	"lathe/internal/report"
	"lathe/internal/scene"
	"lathe/internal/testsupport"
	"lathe/internal/viewer"
)

func modelPayload(name string) []byte {
	return []byte(fmt.Sprintf(`{
		"asset": {"version": "2.0"},
		"scene": 0,
		"scenes": [{"nodes": [0]}],
		"nodes": [{"name": %q, "mesh": 0}],
		"meshes": [{"primitives": [{"attributes": {"POSITION": 0}}]}],
		"accessors": [{"min": [0, 0, 0], "max": [2, 2, 2]}]
	}`, name))
}

// fakeService stands in for the CAD API. Translation jobs are issued
// sequential ids tr-1, tr-2, ... in request order; tests prime per-id
// behavior before selecting.
type fakeService struct {
	mu       sync.Mutex
	nextID   int
	pending  map[string]int           // remaining non-terminal polls
	failures map[string]string        // failure reason for FAILED jobs
	payloads map[string][]byte        // model payload for DONE jobs
	holds    map[string]chan struct{} // block status responses until closed

	elements []onshape.Element
	parts    map[string][]onshape.Part
}

func newFakeService() *fakeService {
	return &fakeService{
		pending:  map[string]int{},
		failures: map[string]string{},
		payloads: map[string][]byte{},
		holds:    map[string]chan struct{}{},
		elements: []onshape.Element{
			{ID: "studio-1", Name: "Parts", ElementType: onshape.ElementTypePartStudio},
			{ID: "asm-1", Name: "Main Assembly", ElementType: onshape.ElementTypeAssembly},
			{ID: "drw-1", Name: "Drawing 1", ElementType: "DRAWING"},
		},
		parts: map[string][]onshape.Part{
			"studio-1": {
				{ElementID: "studio-1", PartID: "p1", Name: "Bracket"},
				{ElementID: "studio-1", PartID: "p2", Name: "Beam µ2"},
			},
		},
	}
}

func (f *fakeService) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		switch {
		case strings.HasSuffix(path, "/elements"):
			f.mu.Lock()
			elements := f.elements
			f.mu.Unlock()
			json.NewEncoder(w).Encode(elements)
		case strings.HasPrefix(path, "/parts/"):
			elementID := path[strings.LastIndex(path, "/")+1:]
			f.mu.Lock()
			parts := f.parts[elementID]
			f.mu.Unlock()
			json.NewEncoder(w).Encode(parts)
		case strings.HasSuffix(path, "/translations"):
			f.mu.Lock()
			f.nextID++
			id := fmt.Sprintf("tr-%d", f.nextID)
			f.mu.Unlock()
			json.NewEncoder(w).Encode(map[string]string{"id": id})
		case strings.HasPrefix(path, "/translations/"):
			f.status(w, path[len("/translations/"):])
		case strings.Contains(path, "/externaldata/"):
			id := strings.TrimPrefix(path[strings.LastIndex(path, "/")+1:], "ext-")
			f.mu.Lock()
			payload := f.payloads[id]
			f.mu.Unlock()
			w.Write(payload)
		default:
			http.NotFound(w, r)
		}
	})
}

func (f *fakeService) status(w http.ResponseWriter, id string) {
	f.mu.Lock()
	hold := f.holds[id]
	f.mu.Unlock()
	if hold != nil {
		<-hold
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	switch {
	case f.pending[id] > 0:
		f.pending[id]--
		json.NewEncoder(w).Encode(map[string]string{"requestState": "ACTIVE"})
	case f.failures[id] != "":
		json.NewEncoder(w).Encode(map[string]string{
			"requestState":  "FAILED",
			"failureReason": f.failures[id],
		})
	default:
		json.NewEncoder(w).Encode(map[string]any{
			"requestState":          "DONE",
			"documentId":            "doc-test",
			"resultExternalDataIds": []string{"ext-" + id},
		})
	}
}

type fixture struct {
	controller *viewer.Controller
	scene      *scene.Manager
	errs       *report.State
	store      *jobs.Store
	service    *fakeService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	service := newFakeService()
	server := httptest.NewServer(service.handler())
	t.Cleanup(server.Close)

	client, err := onshape.New(server.URL, "test-access", "test-secret")
	if err != nil {
		t.Fatalf("onshape.New: %v", err)
	}

	errs := report.NewState(nil)
	mgr := scene.NewManager(gltf.NewDecoder(), &scene.CountingRenderer{}, errs, nil, scene.Options{
		FrameInterval:  time.Millisecond,
		ViewportWidth:  1000,
		ViewportHeight: 540,
		SelectorHeight: 40,
	})
	t.Cleanup(mgr.Close)

	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	controller := viewer.NewController(client, mgr, errs, store, nil, viewer.Options{
		DocumentID:   "doc-test",
		WorkspaceID:  "ws-test",
		PollInterval: 5 * time.Millisecond,
	})
	if _, err := controller.LoadDirectory(context.Background()); err != nil {
		t.Fatalf("LoadDirectory: %v", err)
	}

	return &fixture{controller: controller, scene: mgr, errs: errs, store: store, service: service}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestLoadDirectoryBuildsOrderedOptions(t *testing.T) {
	fix := newFixture(t)

	options := fix.controller.Options()
	wantLabels := []string{viewer.PlaceholderLabel, "Bracket", "Beam µ2", "Main Assembly", "Drawing 1"}
	if len(options) != len(wantLabels) {
		t.Fatalf("options = %d, want %d", len(options), len(wantLabels))
	}
	for i, want := range wantLabels {
		if options[i].Label != want {
			t.Errorf("option %d label = %q, want %q", i, options[i].Label, want)
		}
	}

	if !options[0].Placeholder {
		t.Error("first option must be the placeholder")
	}
	if options[1].ElementID != "studio-1" || options[1].PartID != "p1" {
		t.Errorf("part option parameters = %+v", options[1])
	}
	if options[3].ElementID != "asm-1" || options[3].PartID != "" {
		t.Errorf("assembly option parameters = %+v", options[3])
	}
	if options[4].Translatable() {
		t.Error("drawing option must not be translatable")
	}
}

func TestSelectPartLoadsModelAfterPendingPolls(t *testing.T) {
	fix := newFixture(t)
	fix.service.pending["tr-1"] = 2
	fix.service.payloads["tr-1"] = modelPayload("bracket")

	if err := fix.controller.Select(context.Background(), 1); err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	waitFor(t, "model displayed", func() bool {
		return fix.controller.State() == viewer.StateDisplaying
	})

	if fix.scene.ActiveModel() == nil {
		t.Fatal("expected an active model node")
	}
	if fix.errs.Active() {
		t.Errorf("error state active after successful load: %q", fix.errs.Message())
	}

	encoded, err := fix.scene.Export()
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		t.Fatalf("decode export: %v", err)
	}
	if string(decoded) != string(modelPayload("bracket")) {
		t.Error("export does not round-trip the terminal payload")
	}

	record, err := fix.store.FindByTranslationID(context.Background(), "tr-1")
	if err != nil {
		t.Fatalf("FindByTranslationID: %v", err)
	}
	if record.Status != jobs.StatusComplete || record.Generation != 1 || record.Label != "Bracket" {
		t.Errorf("unexpected job record: %#v", record)
	}
}

func TestSelectPlaceholderClearsSceneAndInvalidatesExport(t *testing.T) {
	fix := newFixture(t)
	fix.service.payloads["tr-1"] = modelPayload("bracket")

	if err := fix.controller.Select(context.Background(), 1); err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	waitFor(t, "model displayed", func() bool {
		return fix.controller.State() == viewer.StateDisplaying
	})

	if err := fix.controller.Select(context.Background(), 0); err != nil {
		t.Fatalf("Select placeholder failed: %v", err)
	}
	if got := fix.controller.State(); got != viewer.StateIdle {
		t.Errorf("state = %q, want idle", got)
	}
	if fix.scene.ActiveModel() != nil {
		t.Error("expected scene cleared after placeholder selection")
	}
	if _, err := fix.scene.Export(); !errors.Is(err, scene.ErrExport) {
		t.Errorf("Export error = %v, want ErrExport", err)
	}
}

func TestStaleCompletionIsDiscarded(t *testing.T) {
	fix := newFixture(t)
	hold := make(chan struct{})
	fix.service.holds["tr-1"] = hold
	fix.service.payloads["tr-1"] = modelPayload("stale-bracket")
	fix.service.payloads["tr-2"] = modelPayload("assembly")

	// First selection's poll blocks inside the service.
	if err := fix.controller.Select(context.Background(), 1); err != nil {
		t.Fatalf("Select first failed: %v", err)
	}
	// Second selection completes while the first is still in flight.
	if err := fix.controller.Select(context.Background(), 3); err != nil {
		t.Fatalf("Select second failed: %v", err)
	}
	waitFor(t, "second model displayed", func() bool {
		return fix.controller.State() == viewer.StateDisplaying
	})

	// Release the first selection's poll; its result must be invisible.
	close(hold)
	waitFor(t, "stale job marked superseded", func() bool {
		record, err := fix.store.FindByTranslationID(context.Background(), "tr-1")
		return err == nil && record.Status == jobs.StatusSuperseded
	})

	if got := fix.controller.State(); got != viewer.StateDisplaying {
		t.Errorf("state = %q, want displaying", got)
	}
	if got := fix.controller.Generation(); got != 2 {
		t.Errorf("generation = %d, want 2", got)
	}
	encoded, err := fix.scene.Export()
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	decoded, _ := base64.StdEncoding.DecodeString(encoded)
	if string(decoded) != string(modelPayload("assembly")) {
		t.Error("stale payload replaced the current model")
	}
}

func TestServerReportedFailureSetsErrorState(t *testing.T) {
	fix := newFixture(t)
	fix.service.failures["tr-1"] = "geometry too complex"

	if err := fix.controller.Select(context.Background(), 1); err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	waitFor(t, "error state", func() bool {
		return fix.controller.State() == viewer.StateError
	})

	if !fix.errs.Active() {
		t.Fatal("expected error banner active")
	}
	if got := fix.errs.Message(); got != "geometry too complex" {
		t.Errorf("error message = %q", got)
	}
	if fix.scene.ActiveModel() != nil {
		t.Error("failed translation must not mutate the scene")
	}

	record, err := fix.store.FindByTranslationID(context.Background(), "tr-1")
	if err != nil {
		t.Fatalf("FindByTranslationID: %v", err)
	}
	if record.Status != jobs.StatusFailed || record.ErrorMessage != "geometry too complex" {
		t.Errorf("unexpected job record: %#v", record)
	}
}

func TestSelectNonTranslatableOptionIsSelectionError(t *testing.T) {
	fix := newFixture(t)

	err := fix.controller.Select(context.Background(), 4)
	if !errors.Is(err, viewer.ErrSelection) {
		t.Fatalf("Select error = %v, want ErrSelection", err)
	}
	if got := fix.controller.State(); got != viewer.StateError {
		t.Errorf("state = %q, want error", got)
	}
	if !fix.errs.Active() {
		t.Error("expected error banner active")
	}
}

func TestSelectOutOfRangeLeavesStateUntouched(t *testing.T) {
	fix := newFixture(t)

	if err := fix.controller.Select(context.Background(), 99); !errors.Is(err, viewer.ErrSelection) {
		t.Fatalf("Select error = %v, want ErrSelection", err)
	}
	if got := fix.controller.Generation(); got != 0 {
		t.Errorf("generation = %d, want 0", got)
	}
	if got := fix.controller.State(); got != viewer.StateIdle {
		t.Errorf("state = %q, want idle", got)
	}
}

func TestErrorStateClearedBySuccessfulLoad(t *testing.T) {
	fix := newFixture(t)
	fix.service.failures["tr-1"] = "first attempt failed"
	fix.service.payloads["tr-2"] = modelPayload("bracket")

	if err := fix.controller.Select(context.Background(), 1); err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	waitFor(t, "error state", func() bool {
		return fix.controller.State() == viewer.StateError
	})

	if err := fix.controller.Select(context.Background(), 1); err != nil {
		t.Fatalf("retry Select failed: %v", err)
	}
	waitFor(t, "model displayed", func() bool {
		return fix.controller.State() == viewer.StateDisplaying
	})
	if fix.errs.Active() {
		t.Error("successful load must clear the error banner")
	}
}

func TestFilenameSanitizesSelectedLabel(t *testing.T) {
	fix := newFixture(t)

	if got := fix.controller.Filename(); got != "model.gltf" {
		t.Errorf("default filename = %q, want model.gltf", got)
	}

	fix.service.payloads["tr-1"] = modelPayload("beam")
	if err := fix.controller.Select(context.Background(), 2); err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	// "Beam µ2": the space and the decomposed micro sign both fold to _.
	if got := fix.controller.Filename(); got != "Beam__2.gltf" {
		t.Errorf("filename = %q, want Beam__2.gltf", got)
	}
}
