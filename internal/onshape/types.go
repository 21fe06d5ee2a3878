package onshape

// Element types reported by the element directory.
const (
	ElementTypePartStudio = "PARTSTUDIO"
	ElementTypeAssembly   = "ASSEMBLY"
)

// Element is one selectable tab of a document workspace.
type Element struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ElementType string `json:"elementType"`
}

// Part is one solid of a part studio element.
type Part struct {
	ElementID string `json:"elementId"`
	PartID    string `json:"partId"`
	Name      string `json:"name"`
}

// Translation identifies a started translation job.
type Translation struct {
	ID string `json:"id"`
}

// TranslationRequest selects the element (and optionally a single part) to
// translate. An empty PartID translates the element as an assembly.
type TranslationRequest struct {
	DocumentID  string
	WorkspaceID string
	ElementID   string
	PartID      string
}

// JobStatus is one observation of a translation job.
//
// Pending means the job has not finished and carries no body. A terminal
// status carries the full response body exactly once: either the raw model
// payload or a JSON object with an "error" field.
type JobStatus struct {
	Pending bool
	Body    []byte
}

// translationRecord models the service's translation status document.
type translationRecord struct {
	ID                    string   `json:"id"`
	RequestState          string   `json:"requestState"`
	FailureReason         string   `json:"failureReason"`
	DocumentID            string   `json:"documentId"`
	ResultExternalDataIDs []string `json:"resultExternalDataIds"`
}

// Fixed tessellation parameters sent with every translation request. These
// mirror the vendor defaults for a medium-resolution glTF export.
const (
	translationResolution    = "medium"
	translationFormat        = "GLTF"
	distanceTolerance        = 0.00012
	angularTolerance         = 0.1090830782496456
	maximumChordLength       = 10
	translationConfiguration = "default"
)
