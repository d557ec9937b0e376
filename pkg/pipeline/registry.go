package pipeline

import (
	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"

	"clusterpipe/internal/store"
	"clusterpipe/pkg/pipeline/model"
)

// registry records the stage chain as a directed graph. The chain is linear
// by construction; the graph catches duplicate stage names at registration
// and carries per-stage status attributes for inspection.
type registry struct {
	store store.StageStore[string, string]
	graph graph.Graph[string, string]
}

func newRegistry() *registry {
	st := store.NewMemoryStore[string, string]()

	return &registry{
		store: st,
		graph: graph.NewWithStore(graph.StringHash, st, graph.Directed(), graph.PreventCycles()),
	}
}

func (r *registry) addStage(name string) error {
	err := r.graph.AddVertex(name, graph.VertexAttribute("status", string(model.StatusPending)))
	if err != nil {
		return errors.Wrapf(err, "registering stage %q", name)
	}

	return nil
}

func (r *registry) addLink(parentName, childName string) error {
	err := r.graph.AddEdge(parentName, childName)
	if err != nil {
		return errors.Wrapf(err, "linking stage %q to %q", parentName, childName)
	}

	return nil
}

func (r *registry) setStatus(name string, status model.StageStatus) {
	r.store.UpdateVertex(name, func(p *graph.VertexProperties) {
		if p.Attributes == nil {
			p.Attributes = make(map[string]string)
		}
		p.Attributes["status"] = string(status)
	})
}

func (r *registry) status(name string) (model.StageStatus, error) {
	_, props, err := r.store.Vertex(name)
	if err != nil {
		return "", errors.Wrapf(err, "looking up stage %q", name)
	}

	return model.StageStatus(props.Attributes["status"]), nil
}
