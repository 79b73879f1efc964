package ecs

// Phase identifies one stage of the per-frame update. Order is fixed by
// spec §4.F and observable: systems in an earlier phase never see the
// effects of a later phase within the same frame.
type Phase int

const (
	PhaseScript Phase = iota
	PhaseAnimation
	PhasePhysics
	PhaseTransform
	PhaseHierarchy
	PhaseLight
	PhaseCamera
	PhaseIK
	PhaseSkin
	PhaseObject
	PhaseEnvironmentProbe
)

func (p Phase) String() string {
	switch p {
	case PhaseScript:
		return "SCRIPT"
	case PhaseAnimation:
		return "ANIMATION"
	case PhasePhysics:
		return "PHYSICS"
	case PhaseTransform:
		return "TRANSFORM"
	case PhaseHierarchy:
		return "HIERARCHY"
	case PhaseLight:
		return "LIGHT"
	case PhaseCamera:
		return "CAMERA"
	case PhaseIK:
		return "IK"
	case PhaseSkin:
		return "SKIN"
	case PhaseObject:
		return "OBJECT"
	case PhaseEnvironmentProbe:
		return "ENVIRONMENT_PROBE"
	default:
		return "UNKNOWN"
	}
}

// PhaseOrder is the total order spec §4.F mandates for phase dispatch.
var PhaseOrder = []Phase{
	PhaseScript, PhaseAnimation, PhasePhysics, PhaseTransform, PhaseHierarchy,
	PhaseLight, PhaseCamera, PhaseIK, PhaseSkin, PhaseObject, PhaseEnvironmentProbe,
}

// SystemFunc is the function shape every registered system implements.
type SystemFunc func(w *World, dt float64)

// System describes one registered system (spec §3 "System descriptor").
// RequiredComponents is informational only here (used by diagnostics and
// by extensions deciding whether to register themselves at all); Pilot
// Light does not auto-filter a system's entities by it — systems use
// ecs.All[T] themselves to decide what they iterate, matching spec §4.F's
// "Systems iterate these directly."
type System struct {
	Name               string
	Phase              Phase
	Fn                 SystemFunc
	RequiredComponents []ComponentTypeKey
}

// RegisterSystem appends sys to its phase's system list. Within a phase,
// registration order is execution order (spec §4.F).
func (w *World) RegisterSystem(sys System) {
	w.systemsByPhase[sys.Phase] = append(w.systemsByPhase[sys.Phase], sys)
}

// RunPhase runs every system registered for phase, in registration order.
func (w *World) RunPhase(phase Phase, dt float64) {
	for _, sys := range w.systemsByPhase[phase] {
		sys.Fn(w, dt)
	}
}

// Update runs every phase once, in the fixed §4.F order — the per-frame
// "app_update" dispatch described in spec §2, driven in this module by
// cmd/pilotlightd's ebiten.Game.Update.
func (w *World) Update(dt float64) {
	for _, phase := range PhaseOrder {
		w.RunPhase(phase, dt)
	}
}
