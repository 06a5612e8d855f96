package network

import (
	"encoding/json"

	"github.com/MRamiBalles/BioHome/server/internal/domain/grid"
	"github.com/MRamiBalles/BioHome/server/internal/domain/habitat"
	"github.com/MRamiBalles/BioHome/server/internal/engine"
	apperrors "github.com/MRamiBalles/BioHome/server/internal/platform/errors"
)

// Command types accepted over /ws and POST /api/command.
const (
	CmdPlaceModule    = "PLACE_MODULE"
	CmdAddCrew        = "ADD_CREW"
	CmdRemoveCrew     = "REMOVE_CREW"
	CmdLaunch         = "LAUNCH"
	CmdStartSpacewalk = "START_SPACEWALK"
	CmdEndSpacewalk   = "END_SPACEWALK"
	CmdSetSpeed       = "SET_SPEED"
	CmdPause          = "PAUSE"
	CmdResume         = "RESUME"
	CmdSnapshot       = "SNAPSHOT"
	CmdFindPath       = "FIND_PATH"
)

// Outgoing message types.
const (
	MsgTypeResult   = "RESULT"
	MsgTypeSnapshot = "SNAPSHOT"
)

// Request is an incoming command from a client.
type Request struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Result is the reply to one Request.
type Result struct {
	Type    string      `json:"type"`
	Command string      `json:"command,omitempty"`
	OK      bool        `json:"ok"`
	Error   string      `json:"error,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// SnapshotMessage is broadcast to every connected client.
type SnapshotMessage struct {
	Type  string          `json:"type"`
	State engine.Snapshot `json:"state"`
}

type placeModulePayload struct {
	Type habitat.ModuleType `json:"type"`
	X    int                `json:"x"`
	Y    int                `json:"y"`
}

type addCrewPayload struct {
	Role habitat.Role `json:"role"`
}

type removeCrewPayload struct {
	Index *int `json:"index"`
}

type setSpeedPayload struct {
	Multiplier *float64 `json:"multiplier"`
}

type findPathPayload struct {
	From grid.Point `json:"from"`
	To   grid.Point `json:"to"`
}

// findPathResult carries an empty slice, never null, when no route exists.
type findPathResult struct {
	Path  []grid.Point `json:"path"`
	Found bool         `json:"found"`
}

// Compile turns a request into a closure for the frame loop. The closure
// stores any reply data in *data. Malformed payloads fail here, before the
// engine sees them.
func Compile(req Request, data *interface{}) (engine.Command, error) {
	switch req.Type {
	case CmdPlaceModule:
		var p placeModulePayload
		if err := decode(req, &p); err != nil {
			return nil, err
		}
		return func(e *engine.Engine) error {
			m, err := e.PlaceModule(p.Type, p.X, p.Y)
			if err != nil {
				return err
			}
			*data = *m
			return nil
		}, nil

	case CmdAddCrew:
		var p addCrewPayload
		if len(req.Payload) > 0 {
			if err := decode(req, &p); err != nil {
				return nil, err
			}
		}
		return func(e *engine.Engine) error {
			m, err := e.AddCrew(p.Role)
			if err != nil {
				return err
			}
			*data = *m
			return nil
		}, nil

	case CmdRemoveCrew:
		var p removeCrewPayload
		if err := decode(req, &p); err != nil {
			return nil, err
		}
		if p.Index == nil {
			return nil, apperrors.Validation("index is required")
		}
		return func(e *engine.Engine) error { return e.RemoveCrew(*p.Index) }, nil

	case CmdLaunch:
		return func(e *engine.Engine) error { return e.Launch() }, nil

	case CmdStartSpacewalk:
		return func(e *engine.Engine) error { return e.StartSpacewalk() }, nil

	case CmdEndSpacewalk:
		return func(e *engine.Engine) error {
			e.EndSpacewalk()
			return nil
		}, nil

	case CmdSetSpeed:
		var p setSpeedPayload
		if err := decode(req, &p); err != nil {
			return nil, err
		}
		if p.Multiplier == nil {
			return nil, apperrors.Validation("multiplier is required")
		}
		return func(e *engine.Engine) error { return e.SetSpeed(*p.Multiplier) }, nil

	case CmdPause:
		return func(e *engine.Engine) error { return e.Pause() }, nil

	case CmdResume:
		return func(e *engine.Engine) error { return e.Resume() }, nil

	case CmdSnapshot:
		return func(e *engine.Engine) error {
			*data = e.Snapshot()
			return nil
		}, nil

	case CmdFindPath:
		var p findPathPayload
		if err := decode(req, &p); err != nil {
			return nil, err
		}
		return func(e *engine.Engine) error {
			path := e.FindPath(p.From, p.To)
			if path == nil {
				path = []grid.Point{}
			}
			*data = findPathResult{Path: path, Found: len(path) > 0}
			return nil
		}, nil

	case "":
		return nil, apperrors.Validation("command type is required")
	default:
		return nil, apperrors.Validationf("unknown command %q", req.Type)
	}
}

func decode(req Request, v interface{}) error {
	if len(req.Payload) == 0 {
		return apperrors.Validationf("%s requires a payload", req.Type)
	}
	if err := json.Unmarshal(req.Payload, v); err != nil {
		return apperrors.Validationf("invalid %s payload: %v", req.Type, err)
	}
	return nil
}

func resultFor(cmd string, data interface{}, err error) Result {
	if err != nil {
		return Result{Type: MsgTypeResult, Command: cmd, OK: false, Error: err.Error()}
	}
	return Result{Type: MsgTypeResult, Command: cmd, OK: true, Data: data}
}
