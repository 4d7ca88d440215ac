package permission

import (
	"fmt"
	"testing"

	"github.com/cucumber/godog"
)

type resolverSteps struct {
	matrix *Matrix
	nodes  map[string]Node
}

func newResolverSteps() *resolverSteps {
	s := &resolverSteps{nodes: map[string]Node{}}
	for _, n := range sampleTree() {
		s.nodes[n.ID] = n
	}
	return s
}

func (s *resolverSteps) aMatrix(mode string) error {
	inheritance, err := ParseInheritance(mode)
	if err != nil {
		return err
	}
	s.matrix = NewMatrix(WithInheritance(inheritance))
	return nil
}

func (s *resolverSteps) aRoleWithDefault(role, level string) error {
	l, err := ParseLevel(level)
	if err != nil {
		return err
	}
	return s.matrix.AddRole(role, l)
}

func (s *resolverSteps) setsNodeTo(role, kind, id, level string) error {
	n, ok := s.nodes[id]
	if !ok || n.Kind.String() != kind {
		return fmt.Errorf("no %s named %q in the fixture tree", kind, id)
	}
	l, err := ParseLevel(level)
	if err != nil {
		return err
	}
	_, err = s.matrix.SetOverride(role, n, l)
	return err
}

func (s *resolverSteps) resolvesTo(role, id, level string) error {
	n, ok := s.nodes[id]
	if !ok {
		return fmt.Errorf("no node named %q in the fixture tree", id)
	}
	got, err := s.matrix.Resolve(role, n)
	if err != nil {
		return err
	}
	if got.String() != level {
		return fmt.Errorf("expected %s on %s for %s, got %s", level, id, role, got)
	}
	return nil
}

func (s *resolverSteps) everyNodeResolvesTo(level, role string) error {
	for id := range s.nodes {
		if err := s.resolvesTo(role, id, level); err != nil {
			return err
		}
	}
	return nil
}

func (s *resolverSteps) hasNoFieldOverride(role, id string) error {
	r, ok := s.matrix.Role(role)
	if !ok {
		return fmt.Errorf("role %q not found", role)
	}
	if l, ok := r.Fields[id]; ok {
		return fmt.Errorf("field %s still has override %s", id, l)
	}
	return nil
}

func TestResolverFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: func(sc *godog.ScenarioContext) {
			s := newResolverSteps()
			sc.Step(`^an? (explicit|legacy) permission matrix$`, s.aMatrix)
			sc.Step(`^a role "([^"]*)" with default "([^"]*)"$`, s.aRoleWithDefault)
			sc.Step(`^"([^"]*)" sets (database|table|field) "([^"]*)" to "([^"]*)"$`, s.setsNodeTo)
			sc.Step(`^"([^"]*)" resolves "([^"]*)" to "([^"]*)"$`, s.resolvesTo)
			sc.Step(`^every node resolves to "([^"]*)" for "([^"]*)"$`, s.everyNodeResolvesTo)
			sc.Step(`^"([^"]*)" has no field override on "([^"]*)"$`, s.hasNoFieldOverride)
		},
		Options: &godog.Options{
			Format:   "progress",
			Paths:    []string{"features"},
			Strict:   true,
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
