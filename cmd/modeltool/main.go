// modeltool is a CLI utility for inspecting evaluation model folders.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Faultbox/iqhfm-eval/internal/assets"
	"github.com/Faultbox/iqhfm-eval/internal/viewer"
	"github.com/Faultbox/iqhfm-eval/pkg/formats"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "info":
		err = cmdInfo(args)
	case "list", "ls":
		err = cmdList(args)
	case "check":
		err = cmdCheck(args)
	case "assign":
		err = cmdAssign(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`modeltool - evaluation model folder utility

Usage:
  modeltool <command> [options]

Commands:
  info <file.ply|file.obj>        Show header and geometry summary
  list <models dir>               List cases and which views are present
  check <models dir> [case ...]   Run the loader on cases and report fallbacks
  assign [-seed N] [-n N]         Print a case assignment

Examples:
  modeltool info models/subject_001_iqhfm.ply
  modeltool list models
  modeltool check models subject_003
  modeltool assign -seed 42`)
}

func cmdInfo(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: modeltool info <file>")
	}
	path := args[0]

	switch strings.ToLower(filepath.Ext(path)) {
	case ".ply":
		ply, err := formats.LoadPLY(path)
		if err != nil {
			return err
		}
		fmt.Printf("File:      %s\n", path)
		fmt.Printf("Encoding:  %s\n", ply.Header.Encoding)
		for _, el := range ply.Header.Elements {
			fmt.Printf("Element:   %s x %d (%d properties)\n", el.Name, el.Count, len(el.Properties))
		}
		for _, c := range ply.Header.Comments {
			fmt.Printf("Comment:   %s\n", c)
		}
		fmt.Printf("Vertices:  %d\n", ply.VertexCount())
		fmt.Printf("Triangles: %d\n", len(ply.Indices)/3)
		fmt.Printf("Normals:   %v\n", ply.Normals != nil)
		switch {
		case ply.Colors != nil:
			fmt.Println("Colors:    combined float r,g,b")
		case ply.HasSeparateRGB():
			fmt.Println("Colors:    separate red/green/blue bytes")
		default:
			fmt.Println("Colors:    none")
		}

	case ".obj":
		obj, err := formats.LoadOBJ(path)
		if err != nil {
			return err
		}
		fmt.Printf("File:      %s\n", path)
		fmt.Printf("Vertices:  %d\n", obj.VertexCount())
		fmt.Printf("Triangles: %d\n", len(obj.Indices)/3)
		fmt.Printf("Normals:   %v\n", obj.Normals != nil)
		fmt.Printf("TexCoords: %v\n", obj.TexCoords != nil)
		if obj.MaterialLib != "" {
			fmt.Printf("mtllib:    %s\n", obj.MaterialLib)
		}
		if len(obj.Materials) > 0 {
			fmt.Printf("Materials: %s\n", strings.Join(obj.Materials, ", "))
		}

	default:
		return fmt.Errorf("unsupported file type: %s", filepath.Ext(path))
	}
	return nil
}

// scanCases groups model files in dir by case ID.
func scanCases(dir string) (map[string][viewer.Count]bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	cases := make(map[string][viewer.Count]bool)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		for _, v := range viewer.Types() {
			suffix := "_" + v.Tag() + v.Ext()
			if name := e.Name(); strings.HasSuffix(name, suffix) {
				id := strings.TrimSuffix(name, suffix)
				views := cases[id]
				views[v] = true
				cases[id] = views
			}
		}
	}
	return cases, nil
}

func sortedKeys(m map[string][viewer.Count]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func cmdList(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: modeltool list <models dir>")
	}
	cases, err := scanCases(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("%-16s", "CASE")
	for _, v := range viewer.Types() {
		fmt.Printf(" %-7s", v.Tag())
	}
	fmt.Println()
	for _, id := range sortedKeys(cases) {
		fmt.Printf("%-16s", id)
		for _, present := range cases[id] {
			mark := "-"
			if present {
				mark = "yes"
			}
			fmt.Printf(" %-7s", mark)
		}
		fmt.Println()
	}

	m := assets.NewManager(args[0], "")
	material := "missing"
	if m.Exists(m.MaterialPath()) {
		material = "present"
	}
	fmt.Printf("\n%d cases, shared material %s\n", len(cases), material)
	return nil
}

func cmdCheck(args []string) error {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	material := fs.String("material", assets.DefaultMaterialFile, "Shared material file name")
	fs.Parse(args)

	if fs.NArg() < 1 {
		return fmt.Errorf("usage: modeltool check <models dir> [case ...]")
	}
	dir := fs.Arg(0)
	ids := fs.Args()[1:]
	if len(ids) == 0 {
		cases, err := scanCases(dir)
		if err != nil {
			return err
		}
		ids = sortedKeys(cases)
	}

	loader := viewer.NewLoader(assets.NewManager(dir, *material), viewer.DefaultProfiles())
	ctx := context.Background()
	placeholders := 0
	for _, id := range ids {
		fmt.Println(id)
		for _, v := range viewer.Types() {
			res := loader.Load(ctx, loader.Request(id, v, 0), nil)
			if res.Placeholder() {
				placeholders++
			}
			fmt.Printf("  %-6s %-12s %-8d %s\n", v.Tag(), res.Tier, res.Asset.VertexCount(), res.Asset.Material.Shading)
			for _, err := range res.Failures {
				fmt.Printf("         ! %v\n", err)
			}
		}
	}
	fmt.Printf("\n%d cases checked, %d placeholder views\n", len(ids), placeholders)
	return nil
}

func cmdAssign(args []string) error {
	fs := flag.NewFlagSet("assign", flag.ExitOnError)
	prefix := fs.String("prefix", "subject_", "Case ID prefix")
	count := fs.Int("count", 15, "Cases available")
	n := fs.Int("n", 5, "Cases per evaluator")
	pinned := fs.String("pinned", "subject_001", "Case always assigned first")
	seed := fs.Int64("seed", 0, "Random seed (0 = clock)")
	fs.Parse(args)

	cases, err := viewer.Assign(*prefix, *count, *n, *pinned, *seed)
	if err != nil {
		return err
	}
	for i, id := range cases {
		fmt.Printf("%d. %s\n", i+1, id)
	}
	return nil
}
