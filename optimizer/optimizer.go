/*
Package optimizer rewrites a feature collection into an equivalent, smaller
one.

Optimization happens at levels:
  - level 0 checks the collection for consistency and changes nothing,
  - level 1 cleans up routines: duplicate and shadowed rules are dropped, runs
    of single substitutions are merged into class substitutions, and empty
    standalone routines are pruned,
  - level 2 additionally merges positioning rules and routines, and moves long
    glyph classes into named classes.

Every level runs its passes until none of them changes anything. Optimizing a
collection a second time at the same level is a no-op.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package optimizer

import (
	"errors"
	"fmt"

	"github.com/npillmayer/fontfeatures"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'fontfeatures.optimizer'
func tracer() tracing.Trace {
	return tracing.Select("fontfeatures.optimizer")
}

// MaxLevel is the highest optimization level.
const MaxLevel = 2

// Errors returned by Optimize.
var (
	ErrInvalidLevel = errors.New("invalid optimization level")
	ErrInconsistent = errors.New("inconsistent feature collection")
)

// Optimizer optimizes a feature collection in place.
type Optimizer struct {
	ff      *fontfeatures.FontFeatures
	changes int
}

// New creates an optimizer for a feature collection.
func New(ff *fontfeatures.FontFeatures) *Optimizer {
	return &Optimizer{ff: ff}
}

// Changes returns the number of changes made by the last call to Optimize.
func (o *Optimizer) Changes() int {
	return o.changes
}

// routinePass rewrites the rules of a single routine and reports whether it
// changed anything.
type routinePass struct {
	name  string
	level int
	run   func(r *fontfeatures.Routine) bool
}

// collectionPass rewrites the collection as a whole.
type collectionPass struct {
	name  string
	level int
	run   func(o *Optimizer) bool
}

var routinePasses = []routinePass{
	{"drop duplicate rules", 1, dropDuplicates},
	{"drop shadowed substitutions", 1, dropShadowedSingles},
	{"merge single substitutions", 1, mergeSingles},
	{"merge single positionings", 2, mergeSinglePositions},
	{"merge pair positionings", 2, mergePairPositions},
}

var collectionPasses = []collectionPass{
	{"prune empty routines", 1, (*Optimizer).pruneEmpty},
	{"merge routines", 2, (*Optimizer).mergeRoutines},
	{"hoist glyph classes", 2, (*Optimizer).hoistClasses},
}

// Optimize runs all passes up to a level, until nothing changes.
func (o *Optimizer) Optimize(level int) error {
	if level < 0 || level > MaxLevel {
		return fmt.Errorf("%w: %d (allowed are 0 to %d)", ErrInvalidLevel, level, MaxLevel)
	}
	if err := o.check(); err != nil {
		return err
	}
	o.changes = 0
	for {
		changed := 0
		for _, r := range o.ff.AllRoutines() {
			for _, pass := range routinePasses {
				if pass.level <= level && pass.run(r) {
					tracer().Debugf("%s: %s", r.Name, pass.name)
					changed++
				}
			}
		}
		for _, pass := range collectionPasses {
			if pass.level <= level && pass.run(o) {
				tracer().Debugf("%s", pass.name)
				changed++
			}
		}
		if changed == 0 {
			break
		}
		o.changes += changed
	}
	tracer().Infof("optimized at level %d with %d changes", level, o.changes)
	return nil
}

// check looks for structural problems: nil routines or rules, chains
// pointing nowhere, and distinct routines sharing a name.
func (o *Optimizer) check() error {
	for _, f := range o.ff.Features() {
		for _, r := range f.Routines {
			if r == nil {
				return fmt.Errorf("%w: feature %s references no routine", ErrInconsistent, f.Tag)
			}
		}
	}
	names := make(map[string]*fontfeatures.Routine)
	for _, r := range o.ff.AllRoutines() {
		if other, ok := names[r.Name]; ok && other != r && r.Name != "" {
			return fmt.Errorf("%w: two routines named %s", ErrInconsistent, r.Name)
		}
		names[r.Name] = r
		for _, rule := range r.Rules {
			if rule == nil {
				return fmt.Errorf("%w: routine %s has a nil rule", ErrInconsistent, r.Name)
			}
			ch, ok := rule.(*fontfeatures.Chaining)
			if !ok {
				continue
			}
			if len(ch.Lookups) > len(ch.Input) {
				return fmt.Errorf("%w: routine %s: chain applies lookups beyond its input",
					ErrInconsistent, r.Name)
			}
			for _, lookups := range ch.Lookups {
				for _, target := range lookups {
					if target == nil {
						return fmt.Errorf("%w: routine %s: chain references no routine", ErrInconsistent, r.Name)
					}
				}
			}
		}
	}
	return nil
}
