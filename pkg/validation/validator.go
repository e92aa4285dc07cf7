// Package validation checks editor mutation requests before they reach
// the network store, and editor configuration at startup. Request
// structs carry validator tags; config checks use a fluent collector
// that reports every problem at once.
package validation

import (
	"errors"
	"fmt"
	"math"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	validate *validator.Validate

	// Validation constants
	MaxLabelLength    = 50
	MaxSchedulePoints = 500
	MaxProfileSamples = 500

	labelPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

func init() {
	validate = validator.New()
}

// AddNodeRequest is a UI-level request to create a node.
type AddNodeRequest struct {
	Kind string  `json:"kind" validate:"required,oneof=reservoir node junction surgeTank flowBoundary"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// AddEdgeRequest is a UI-level request to connect two nodes.
type AddEdgeRequest struct {
	Source uint64 `json:"source" validate:"required,min=1"`
	Target uint64 `json:"target" validate:"required,min=1"`
}

// SchedulePointRequest mirrors a schedule point for validation.
type SchedulePointRequest struct {
	Time float64 `json:"time" validate:"min=0"`
	Flow float64 `json:"flow"`
}

// NodePatchRequest carries the user-editable node fields.
type NodePatchRequest struct {
	Label      *string                `json:"label" validate:"omitempty,min=1,max=50"`
	NodeNumber *int                   `json:"nodeNumber" validate:"omitempty,min=1"`
	Elevation  *float64               `json:"elevation"`
	TankTop    *float64               `json:"tankTop"`
	TankBottom *float64               `json:"tankBottom"`
	Diameter   *float64               `json:"diameter" validate:"omitempty,gt=0"`
	Celerity   *float64               `json:"celerity" validate:"omitempty,gt=0"`
	Friction   *float64               `json:"friction" validate:"omitempty,gte=0"`
	Schedule   []SchedulePointRequest `json:"schedule" validate:"omitempty,max=500,dive"`
}

// EdgePatchRequest carries the user-editable edge fields.
type EdgePatchRequest struct {
	Label    *string  `json:"label" validate:"omitempty,min=1,max=50"`
	Kind     *string  `json:"kind" validate:"omitempty,oneof=conduit dummy"`
	Length   *float64 `json:"length" validate:"omitempty,gt=0"`
	Diameter *float64 `json:"diameter" validate:"omitempty,gt=0"`
	Celerity *float64 `json:"celerity" validate:"omitempty,gt=0"`
	Friction *float64 `json:"friction" validate:"omitempty,gte=0"`
	Segments *int     `json:"segments" validate:"omitempty,min=1,max=1000"`
}

// ValidateAddNode validates a node creation request.
func ValidateAddNode(req *AddNodeRequest) error {
	if req == nil {
		return errors.New("add-node request cannot be nil")
	}
	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}
	if !finite(req.X) || !finite(req.Y) {
		return errors.New("Position: coordinates must be finite")
	}
	return nil
}

// ValidateAddEdge validates an edge creation request. Self-loops are a
// permitted topology, so source == target passes.
func ValidateAddEdge(req *AddEdgeRequest) error {
	if req == nil {
		return errors.New("add-edge request cannot be nil")
	}
	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// ValidateNodePatch validates a partial node-data update.
func ValidateNodePatch(req *NodePatchRequest) error {
	if req == nil {
		return errors.New("node patch cannot be nil")
	}
	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}
	if req.Label != nil && !labelPattern.MatchString(*req.Label) {
		return fmt.Errorf("Label: %q contains invalid characters (alphanumeric, underscore and dash allowed)", *req.Label)
	}
	if req.TankTop != nil && req.TankBottom != nil && *req.TankTop <= *req.TankBottom {
		return errors.New("TankTop: must exceed TankBottom")
	}
	for i := 1; i < len(req.Schedule); i++ {
		if req.Schedule[i].Time < req.Schedule[i-1].Time {
			return fmt.Errorf("Schedule: times must be non-decreasing (point %d)", i)
		}
	}
	return nil
}

// ValidateEdgePatch validates a partial edge-data update.
func ValidateEdgePatch(req *EdgePatchRequest) error {
	if req == nil {
		return errors.New("edge patch cannot be nil")
	}
	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}
	if req.Label != nil && !labelPattern.MatchString(*req.Label) {
		return fmt.Errorf("Label: %q contains invalid characters (alphanumeric, underscore and dash allowed)", *req.Label)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// formatValidationError converts validator errors into readable
// field-prefixed messages.
func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		e := verrs[0]
		return fmt.Errorf("%s: failed %q validation (value %v)", e.Field(), e.Tag(), e.Value())
	}
	return err
}
