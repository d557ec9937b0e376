package drawer

import (
	"fmt"
	"io"
	"os"
	"text/template"
	"time"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"
	"gopkg.in/go-playground/colors.v1" //nolint

	"clusterpipe/pkg/pipeline/model"
)

// SVGDrawer is a drawer that creates a DOT file with the pipeline graph,
// colouring each stage by its final status.
type SVGDrawer struct {
	graph       graph.Graph[string, string]
	stages      map[string]struct{}
	svgFileName string
}

// NewSVGDrawer creates a new SVG drawer.
func NewSVGDrawer(svgFileName string) *SVGDrawer {
	return &SVGDrawer{
		svgFileName: svgFileName,
		graph:       graph.New(graph.StringHash, graph.Directed()),
		stages:      make(map[string]struct{}),
	}
}

// AddStage adds a stage to the pipeline graph.
func (d *SVGDrawer) AddStage(name string) error {
	pending, err := statusColor(model.StatusPending)
	if err != nil {
		return err
	}

	err = d.graph.AddVertex(name,
		graph.VertexAttribute("style", "filled"),
		graph.VertexAttribute("fillcolor", pending),
	)
	if err != nil {
		return errors.Wrap(err, "unable to add vertex")
	}

	d.stages[name] = struct{}{}

	return nil
}

// AddLink adds a link between parent and child stages.
func (d *SVGDrawer) AddLink(parentName, childName string) error {
	err := d.graph.AddEdge(parentName, childName)
	if err != nil {
		return errors.Wrapf(err, "unable to add edge from %s to %s", parentName, childName)
	}

	return nil
}

// SetStatus colours a stage vertex according to status.
func (d *SVGDrawer) SetStatus(name string, status model.StageStatus) error {
	_, properties, err := d.graph.VertexWithProperties(name)
	if err != nil {
		return errors.Wrap(err, "unable to get vertex properties")
	}

	colour, err := statusColor(status)
	if err != nil {
		return err
	}
	properties.Attributes["fillcolor"] = colour

	return nil
}

// SetElapsed labels a stage vertex with its duration.
func (d *SVGDrawer) SetElapsed(name string, elapsed time.Duration) error {
	_, properties, err := d.graph.VertexWithProperties(name)
	if err != nil {
		return errors.Wrap(err, "unable to get vertex properties")
	}

	properties.Attributes["xlabel"] = elapsed.String()

	return nil
}

// Draw creates a file with the pipeline graph.
func (d *SVGDrawer) Draw() error {
	file, err := os.Create(d.svgFileName)
	if err != nil {
		return errors.Wrapf(err, "unable to create file %s", d.svgFileName)
	}
	defer file.Close()

	err = dot(d.graph, file)
	if err != nil {
		return errors.Wrapf(err, "unable to create dot file %s", d.svgFileName)
	}

	return nil
}

func statusColor(status model.StageStatus) (string, error) {
	var red, green, blue uint8
	switch status {
	case model.StatusExecuted:
		red, green, blue = 46, 160, 67
	case model.StatusSkipped:
		red, green, blue = 9, 105, 218
	case model.StatusFailed:
		red, green, blue = 207, 34, 46
	default:
		red, green, blue = 208, 215, 222
	}

	colour, err := colors.RGB(red, green, blue) //nolint
	if err != nil {
		return "", errors.Wrap(err, "unable to get colour")
	}

	return colour.ToHEX().String(), nil
}

//nolint:lll //this is a template
const dotTemplate = `strict {{.GraphType}} {
	{{range $k, $v := .Attributes}}
		{{$k}}="{{$v}}";
	{{end}}
	{{range $s := .Statements}}
		"{{.Source}}" {{if .Target}}{{$.EdgeOperator}} "{{.Target}}" [ {{range $k, $v := .EdgeAttributes}}{{$k}}="{{$v}}", {{end}} weight={{.EdgeWeight}} ]{{else}}[ {{range $k, $v := .SourceAttributes}}{{$k}}="{{$v}}", {{end}} weight={{.SourceWeight}} ]{{end}};
	{{end}}
	}
	`

type description struct {
	GraphType    string
	Attributes   map[string]string
	EdgeOperator string
	Statements   []statement
}

type statement struct {
	Source           interface{}
	Target           interface{}
	SourceAttributes map[string]string
	EdgeAttributes   map[string]string
	SourceWeight     int
	EdgeWeight       int
}

func dot[K comparable, T any](g graph.Graph[K, T], wrt io.Writer, options ...func(*description)) error {
	desc, err := generateDOT(g, options...)
	if err != nil {
		return fmt.Errorf("failed to generate DOT description: %w", err)
	}

	return renderDOT(wrt, desc)
}

// GraphAttribute is a functional option for the [dot] method.
func GraphAttribute(key, value string) func(*description) {
	return func(d *description) {
		d.Attributes[key] = value
	}
}

func generateDOT[K comparable, T any](gra graph.Graph[K, T], options ...func(*description)) (description, error) {
	desc := description{
		GraphType:    "graph",
		Attributes:   make(map[string]string),
		EdgeOperator: "--",
		Statements:   make([]statement, 0),
	}

	for _, option := range options {
		option(&desc)
	}

	if gra.Traits().IsDirected {
		desc.GraphType = "digraph"
		desc.EdgeOperator = "->"
	}

	adjacencyMap, err := gra.AdjacencyMap()
	if err != nil {
		return desc, err
	}

	for vertex, adjacencies := range adjacencyMap {
		_, sourceProperties, err := gra.VertexWithProperties(vertex)
		if err != nil {
			return desc, err
		}

		stmt := statement{
			Source:           vertex,
			SourceWeight:     sourceProperties.Weight,
			SourceAttributes: sourceProperties.Attributes,
		}
		desc.Statements = append(desc.Statements, stmt)

		for adjacency, edge := range adjacencies {
			stmt := statement{
				Source:         vertex,
				Target:         adjacency,
				EdgeWeight:     edge.Properties.Weight,
				EdgeAttributes: edge.Properties.Attributes,
			}
			desc.Statements = append(desc.Statements, stmt)
		}
	}

	return desc, nil
}

func renderDOT(wrt io.Writer, d description) error {
	tpl, err := template.New("dotTemplate").Parse(dotTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return tpl.Execute(wrt, d)
}

var _ Drawer = (*SVGDrawer)(nil)
