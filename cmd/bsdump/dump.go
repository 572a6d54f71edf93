package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/Davipb/BinarySerializer/internal/typegraph"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "dump <type>",
		Short: "Compile a registered example type and print its type graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(args[0])
		},
	})
	rootCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the registered example types",
		RunE: func(cmd *cobra.Command, args []string) error {
			names := make([]string, 0, len(exampleTypes))
			for name := range exampleTypes {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Println(name)
			}
			return nil
		},
	})
}

func runDump(name string) error {
	t, ok := exampleTypes[name]
	if !ok {
		return fmt.Errorf("unknown type %q (see bsdump list)", name)
	}
	printVerbose("compiling %s\n", t)
	node, err := typegraph.Build(t)
	if err != nil {
		return fmt.Errorf("compile %s: %w", name, err)
	}
	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(snapshot(node))
	}
	printNode(node, "")
	return nil
}

// snap is a JSON-safe projection of a typegraph.Node: the real Node carries
// reflect.Type and binding.Binding values that don't marshal meaningfully.
type snap struct {
	Name     string `json:"name"`
	GoType   string `json:"goType"`
	Kind     string `json:"kind"`
	Repr     string `json:"repr,omitempty"`
	Width    int    `json:"width,omitempty"`
	Children []snap `json:"children,omitempty"`
	Item     *snap  `json:"item,omitempty"`
}

func snapshot(n *typegraph.Node) snap {
	s := snap{Name: n.Name, GoType: n.GoType.String(), Kind: kindName(n.Kind)}
	if n.Kind == typegraph.KindValue {
		s.Repr = reprName(n.Repr)
		s.Width = int(n.IntWidth)
	}
	for _, c := range n.Children {
		s.Children = append(s.Children, snapshot(c))
	}
	if n.Item != nil {
		item := snapshot(n.Item)
		s.Item = &item
	}
	return s
}

func printNode(n *typegraph.Node, indent string) {
	line := fmt.Sprintf("%s%s %s (%s)", indent, n.Name, n.GoType, kindName(n.Kind))
	if n.Kind == typegraph.KindValue {
		line += fmt.Sprintf(" repr=%s width=%d", reprName(n.Repr), n.IntWidth)
	}
	if n.Length != nil {
		line += " length-bound"
	}
	if n.Count != nil {
		line += " count-bound"
	}
	if n.Subtypes != nil {
		line += " polymorphic"
	}
	if len(n.Computed) > 0 {
		line += " computed"
	}
	fmt.Println(line)
	for _, c := range n.Children {
		printNode(c, indent+"  ")
	}
	if n.Item != nil {
		printNode(n.Item, indent+"  ")
	}
}

func kindName(k typegraph.Kind) string {
	switch k {
	case typegraph.KindValue:
		return "value"
	case typegraph.KindObject:
		return "object"
	case typegraph.KindCollection:
		return "collection"
	case typegraph.KindPrimitiveArray:
		return "primitive-array"
	case typegraph.KindCustomSerialized:
		return "custom"
	case typegraph.KindStreamPassthrough:
		return "stream-passthrough"
	default:
		return "unknown"
	}
}

func reprName(r typegraph.ValueRepr) string {
	switch r {
	case typegraph.ReprInt:
		return "int"
	case typegraph.ReprUint:
		return "uint"
	case typegraph.ReprFloat:
		return "float"
	case typegraph.ReprBool:
		return "bool"
	case typegraph.ReprString:
		return "string"
	case typegraph.ReprBytes:
		return "bytes"
	default:
		return "?"
	}
}
