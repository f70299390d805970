package astrocore

// Criterion selects how a RealCondition's evaluator value is compared
// against its target.
type Criterion uint8

const (
	StrictlyPositive Criterion = iota
	StrictlyNegative
	AnyCrossing
	PositiveCrossing
	NegativeCrossing
)

// EventCondition is a predicate over two adjacent states (prev, curr),
// used by the numerical propagator to detect a first-crossing termination
// condition.
type EventCondition interface {
	// Evaluate returns whether the condition fires between prev and curr,
	// plus the signed evaluator value at curr (used for bisection refinement).
	Evaluate(prev, curr State) (fired bool, value float64, err error)
	Name() string
}

// Evaluator computes the scalar quantity a RealCondition watches (e.g.
// altitude minus a target, or a guidance law's unit-thrust norm minus 0.5).
type Evaluator func(s State) (float64, error)

// RealCondition fires when evaluator(state) - target crosses zero in the
// direction implied by Criterion, or holds a strict sign continuously for
// StrictlyPositive/StrictlyNegative.
type RealCondition struct {
	ConditionName string
	Evaluate_     Evaluator
	Criterion     Criterion
	Target        float64
}

// NewRealCondition builds a RealCondition.
func NewRealCondition(name string, evaluator Evaluator, criterion Criterion, target float64) *RealCondition {
	return &RealCondition{ConditionName: name, Evaluate_: evaluator, Criterion: criterion, Target: target}
}

func (c *RealCondition) Name() string { return c.ConditionName }

func (c *RealCondition) Evaluate(prev, curr State) (bool, float64, error) {
	currValue, err := c.Evaluate_(curr)
	if err != nil {
		return false, 0, err
	}
	currSigned := currValue - c.Target

	switch c.Criterion {
	case StrictlyPositive:
		return currSigned > 0, currSigned, nil
	case StrictlyNegative:
		return currSigned < 0, currSigned, nil
	default:
		prevValue, err := c.Evaluate_(prev)
		if err != nil {
			return false, currSigned, err
		}
		prevSigned := prevValue - c.Target
		switch c.Criterion {
		case AnyCrossing:
			return (prevSigned <= 0 && currSigned > 0) || (prevSigned >= 0 && currSigned < 0), currSigned, nil
		case PositiveCrossing:
			return prevSigned <= 0 && currSigned > 0, currSigned, nil
		case NegativeCrossing:
			return prevSigned >= 0 && currSigned < 0, currSigned, nil
		default:
			return false, currSigned, New(WrongInput, "unknown criterion %v", c.Criterion)
		}
	}
}

// LogicalKind selects how a LogicalCondition combines its children.
type LogicalKind uint8

const (
	And LogicalKind = iota
	Or
)

// LogicalCondition combines child EventConditions with And/Or semantics.
type LogicalCondition struct {
	ConditionName string
	Kind          LogicalKind
	Children      []EventCondition
}

// NewLogicalCondition builds a LogicalCondition over the given children.
func NewLogicalCondition(name string, kind LogicalKind, children ...EventCondition) *LogicalCondition {
	return &LogicalCondition{ConditionName: name, Kind: kind, Children: children}
}

func (c *LogicalCondition) Name() string { return c.ConditionName }

func (c *LogicalCondition) Evaluate(prev, curr State) (bool, float64, error) {
	var lastValue float64
	for _, child := range c.Children {
		fired, value, err := child.Evaluate(prev, curr)
		if err != nil {
			return false, 0, err
		}
		lastValue = value
		if c.Kind == Or && fired {
			return true, value, nil
		}
		if c.Kind == And && !fired {
			return false, value, nil
		}
	}
	if c.Kind == And {
		return true, lastValue, nil
	}
	return false, lastValue, nil
}
