package viz

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"slices"
	"strings"
)

// compiledTemplate is parsed at init time to fail fast on template errors.
var compiledTemplate *template.Template

func init() {
	compiledTemplate = template.Must(template.New("viz").Parse(htmlTemplate))
}

// HTMLOptions configures HTML generation.
type HTMLOptions struct {
	Layout string // "force", "circle", or "grid"
	Title  string
}

// DefaultOptions returns default HTML generation options.
func DefaultOptions() HTMLOptions {
	return HTMLOptions{
		Layout: "force",
	}
}

// ValidLayouts lists the supported layout algorithm names.
var ValidLayouts = []string{"force", "circle", "grid"}

// GenerateHTML generates a self-contained HTML file for the graph visualization.
func GenerateHTML(graph *GraphData, opts HTMLOptions) (string, error) {
	if graph == nil {
		return "", fmt.Errorf("graph cannot be nil")
	}

	// Validate layout option
	if err := validateLayout(opts.Layout); err != nil {
		return "", err
	}

	title := opts.Title
	if title == "" {
		title = fmt.Sprintf("Co-citation network (%s)", graph.Kind)
	}

	if graph.IsEmpty() {
		return generateEmptyHTML(title), nil
	}

	graphJSON, err := graph.ToCytoscapeJSON()
	if err != nil {
		return "", err
	}

	data := templateData{
		Title:       title,
		Kind:        string(graph.Kind),
		GraphJSON:   template.JS(graphJSON),
		NodeCount:   len(graph.Nodes),
		EdgeCount:   len(graph.Edges),
		Layout:      layoutToCytoscape(opts.Layout),
		MaxStrength: graph.MaxStrength(),
		MaxWeight:   graph.MaxWeight(),
	}

	var buf bytes.Buffer
	if err := compiledTemplate.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// WriteHTMLFile renders graph and writes it to path.
func WriteHTMLFile(path string, graph *GraphData, opts HTMLOptions) error {
	html, err := GenerateHTML(graph, opts)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(html), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// validateLayout checks if the layout option is valid.
func validateLayout(layout string) error {
	if layout == "" || slices.Contains(ValidLayouts, layout) {
		return nil
	}
	return fmt.Errorf("invalid layout %q: must be one of %s", layout, strings.Join(ValidLayouts, ", "))
}

// templateData holds data for the HTML template.
type templateData struct {
	Title       string
	Kind        string
	GraphJSON   template.JS
	Layout      string
	NodeCount   int
	EdgeCount   int
	MaxStrength int
	MaxWeight   int
}

// layoutToCytoscape converts user-friendly layout names to Cytoscape.js layout algorithm names.
func layoutToCytoscape(layout string) string {
	switch layout {
	case "circle":
		return "circle"
	case "grid":
		return "grid"
	default:
		return "cose"
	}
}

// generateEmptyHTML returns a placeholder page for a graph without edges.
func generateEmptyHTML(title string) string {
	return `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>` + template.HTMLEscapeString(title) + `</title>
  <style>
    body { font: 14px/1.5 system-ui, sans-serif; margin: 0; height: 100vh;
           display: grid; place-items: center; background: #fafafa; color: #555; }
    main { text-align: center; }
    h1 { font-size: 18px; color: #222; }
    code { background: #eee; padding: 1px 5px; border-radius: 3px; }
  </style>
</head>
<body>
  <main>
    <h1>` + template.HTMLEscapeString(title) + `</h1>
    <p>No edges reach the minimum weight.</p>
    <p>Build tables with <code>cocite run</code> or lower <code>--min-weight</code>.</p>
  </main>
</body>
</html>`
}

const htmlTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.Title}}</title>
  <script src="https://unpkg.com/cytoscape@3/dist/cytoscape.min.js"></script>
  <style>
    body { font: 13px/1.4 system-ui, sans-serif; margin: 0; display: flex; height: 100vh; color: #222; }
    aside { width: 240px; padding: 14px; border-right: 1px solid #ddd; background: #fafafa; overflow-y: auto; }
    aside h1 { font-size: 15px; margin: 0 0 6px; }
    aside .stats { color: #666; margin-bottom: 12px; }
    aside label { display: block; margin: 10px 0 4px; font-weight: 600; }
    aside input { width: 100%; }
    #info { margin-top: 14px; border-top: 1px solid #ddd; padding-top: 10px; }
    #info .kind { font-size: 10px; text-transform: uppercase; color: #888; }
    #info .name { font-weight: 600; margin: 2px 0 6px; }
    #info ol { padding-left: 18px; margin: 4px 0; }
    #cy { flex: 1; background: #fff; }
  </style>
</head>
<body>
  <aside>
    <h1>{{.Title}}</h1>
    <div class="stats">{{.NodeCount}} {{.Kind}} nodes, {{.EdgeCount}} edges</div>
    <label for="find">Find</label>
    <input id="find" type="search" placeholder="name">
    <label for="threshold">Minimum weight: <span id="threshold-value">1</span></label>
    <input id="threshold" type="range" min="1" max="{{.MaxWeight}}" value="1">
    <div id="info">Click a node to list its strongest co-citations.</div>
  </aside>
  <div id="cy"></div>
  <script>
    (function() {
      const elements = {{.GraphJSON}};
      const maxStrength = Math.max({{.MaxStrength}}, 1);
      const maxWeight = Math.max({{.MaxWeight}}, 2);

      const nodeSize = 'mapData(strength, 0, ' + maxStrength + ', 14, 56)';
      const cy = cytoscape({
        container: document.getElementById('cy'),
        elements: elements,
        style: [
          { selector: 'node', style: {
              'label': 'data(label)', 'font-size': 9, 'text-valign': 'bottom',
              'text-margin-y': 4, 'width': nodeSize, 'height': nodeSize } },
          { selector: 'node[kind="author"]', style: { 'background-color': '#4A90D9' } },
          { selector: 'node[kind="institution"]', style: { 'background-color': '#E8923A', 'shape': 'diamond' } },
          { selector: 'edge', style: {
              'line-color': '#9aa5a6', 'curve-style': 'haystack', 'opacity': 0.6,
              'width': 'mapData(weight, 1, ' + maxWeight + ', 1, 8)' } },
          { selector: '.faded', style: { 'opacity': 0.08 } },
          { selector: 'node.focus', style: { 'border-width': 3, 'border-color': '#d0021b' } },
          { selector: '.hidden', style: { 'display': 'none' } }
        ],
        layout: {
          name: '{{.Layout}}',
          animate: false,
          nodeRepulsion: 8000,
          idealEdgeLength: function(edge) { return 160 / Math.sqrt(edge.data('weight')); }
        }
      });

      function text(s) {
        const d = document.createElement('div');
        d.textContent = s || '';
        return d.innerHTML;
      }

      function describe(node) {
        const d = node.data();
        let html = '<div class="kind">' + d.kind + '</div><div class="name">' + text(d.label) + '</div>';
        if (d.orcid) html += '<div>ORCID ' + text(d.orcid) + '</div>';
        if (d.country) html += '<div>' + text(d.country) + (d.type ? ', ' + text(d.type) : '') + '</div>';
        html += '<div>degree ' + d.degree + ', strength ' + d.strength + '</div>';
        const ties = node.connectedEdges(':visible').sort(function(a, b) {
          return b.data('weight') - a.data('weight');
        }).slice(0, 10);
        if (ties.length) {
          html += '<ol>';
          ties.forEach(function(e) {
            const other = e.source().same(node) ? e.target() : e.source();
            html += '<li>' + text(other.data('label')) + ' (' + e.data('weight') + ')</li>';
          });
          html += '</ol>';
        }
        return html;
      }

      const info = document.getElementById('info');
      cy.on('tap', 'node', function(evt) {
        const node = evt.target;
        const near = node.closedNeighborhood();
        cy.elements().removeClass('focus faded');
        cy.elements().not(near).addClass('faded');
        node.addClass('focus');
        info.innerHTML = describe(node);
      });
      cy.on('tap', function(evt) {
        if (evt.target === cy) {
          cy.elements().removeClass('focus faded');
        }
      });

      const threshold = document.getElementById('threshold');
      threshold.addEventListener('input', function() {
        const min = Number(threshold.value);
        document.getElementById('threshold-value').textContent = min;
        cy.batch(function() {
          cy.edges().forEach(function(e) {
            e.toggleClass('hidden', e.data('weight') < min);
          });
        });
      });

      document.getElementById('find').addEventListener('input', function(evt) {
        const q = evt.target.value.trim().toLowerCase();
        cy.elements().removeClass('focus faded');
        if (!q) return;
        const hits = cy.nodes().filter(function(n) {
          return (n.data('label') || '').toLowerCase().includes(q);
        });
        cy.elements().not(hits).addClass('faded');
        hits.addClass('focus');
      });
    })();
  </script>
</body>
</html>`
