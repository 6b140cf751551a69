// Package graphio writes laid-out syntax graphs as JSON.
//
// The document is a node-link object, convenient for feeding the diagram
// into other tools or for diffing two versions of a program:
//
//	{
//	  "title": "Abstract Syntax Tree:",
//	  "root": "Module#0",
//	  "nodes": [
//	    {"id": "Module#0", "label": "Module", "color": "#b3ffb3", "x": 0.5, "y": 0}
//	  ],
//	  "edges": [
//	    {"from": "Module#0", "to": "Expr#1"}
//	  ]
//	}
//
// Nodes keep the graph's labelling order, so the first node is the root.
// Edges keep the order they were recorded in. The x and y fields are
// omitted for nodes without a position.
package graphio
