package main

import (
	"fmt"
	"go/format"
	"os"
	"strings"

	"github.com/cradle-di/cradle/set"
	"github.com/cradle-di/cradle/slices"
)

// findSuitableAlias builds an import alias from the last path token,
// prepending the first letter of earlier tokens (then a counter) until the
// alias is free.
func findSuitableAlias(importPath string, taken set.Set[string]) string {
	tokens := strings.Split(importPath, "/")
	alias := tokens[len(tokens)-1]
	alias = strings.Map(keepIdentifierRune, alias)

	next := len(tokens) - 2
	for taken.Contains(alias) {
		if next >= 0 {
			prefix := strings.Map(keepIdentifierRune, tokens[next])
			if prefix != "" {
				alias = prefix[:1] + alias
			}
			next--
		} else {
			base := alias
			for i := 1; taken.Contains(alias); i++ {
				alias = fmt.Sprintf("%s%d", base, i)
			}
		}
	}
	return alias
}

func keepIdentifierRune(r rune) rune {
	if r == '-' || r == '.' {
		return -1
	}
	return r
}

func generateCode(outputPath string, packageName string, definitions []BeanDefinition) error {
	aliases := make(map[string]string)
	taken := set.NewWithValues[string]("cradle", "option", "fmt", packageName)
	for _, def := range definitions {
		for _, ref := range def.Fns {
			if _, ok := aliases[ref.ImportPath]; ok {
				continue
			}
			alias := findSuitableAlias(ref.ImportPath, taken)
			taken.Add(alias)
			aliases[ref.ImportPath] = alias
		}
	}

	var b strings.Builder
	b.WriteString("// Code generated by cradlegen. DO NOT EDIT.\n\n")
	b.WriteString(fmt.Sprintf("package %s\n\n", packageName))
	b.WriteString("import (\n")
	b.WriteString("\t\"fmt\"\n\n")
	b.WriteString("\t\"github.com/cradle-di/cradle\"\n")
	b.WriteString("\t\"github.com/cradle-di/cradle/option\"\n")
	if len(aliases) > 0 {
		b.WriteString("\n")
		seen := set.New[string]()
		for _, def := range definitions {
			for _, ref := range def.Fns {
				if seen.Contains(ref.ImportPath) {
					continue
				}
				seen.Add(ref.ImportPath)
				b.WriteString(fmt.Sprintf("\t%s %q\n", aliases[ref.ImportPath], ref.ImportPath))
			}
		}
	}
	b.WriteString(")\n\n")

	b.WriteString("// RegisterGeneratedBeans registers every annotated bean of the module.\n")
	b.WriteString("func RegisterGeneratedBeans(registry *cradle.Registry) error {\n")
	for _, def := range definitions {
		fns := strings.Join(
			slices.Map(def.Fns, func(ref FnRef) string {
				return aliases[ref.ImportPath] + "." + ref.FnName
			}),
			", ",
		)
		registrar := "cradle.Constructors"
		if def.Factory {
			registrar = "cradle.FactoryFunctions"
		}

		b.WriteString(fmt.Sprintf("\tif err := registerGeneratedBean(registry, %q,\n", def.Named))
		b.WriteString(fmt.Sprintf("\t\t%s(%s),\n", registrar, fns))
		if def.Description != "" {
			b.WriteString(fmt.Sprintf("\t\tcradle.WithDescription(%q),\n", def.Description))
		}
		if def.Strict {
			b.WriteString("\t\tcradle.StrictResolution(),\n")
		}
		if def.Prototype {
			b.WriteString("\t\tcradle.Prototype(),\n")
		}
		b.WriteString("\t); err != nil {\n\t\treturn err\n\t}\n")
	}
	b.WriteString("\treturn nil\n")
	b.WriteString("}\n\n")

	b.WriteString("func registerGeneratedBean(registry *cradle.Registry, name string, opts ...option.Option[cradle.DefinitionOptions]) error {\n")
	b.WriteString("\tdef, err := cradle.NewDefinition(name, opts...)\n")
	b.WriteString("\tif err != nil {\n")
	b.WriteString("\t\treturn fmt.Errorf(\"invalid generated definition %q: %w\", name, err)\n")
	b.WriteString("\t}\n")
	b.WriteString("\treturn registry.Register(def)\n")
	b.WriteString("}\n")

	formatted, err := format.Source([]byte(b.String()))
	if err != nil {
		return fmt.Errorf("generated code does not compile: %w", err)
	}
	return os.WriteFile(outputPath, formatted, 0o644)
}
