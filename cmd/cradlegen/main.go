package main

import (
	"fmt"
	"go/ast"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/tools/go/packages"

	"github.com/cradle-di/cradle/slices"
)

const (
	beanAnnotationTag    = "@bean"
	factoryAnnotationTag = "@factory"
)

type (
	// BeanDefinition is one definition to generate: all the constructor
	// (or factory) functions sharing a bean name form one overload set.
	BeanDefinition struct {
		Named       string
		Description string

		Factory   bool
		Strict    bool
		Prototype bool

		Fns []FnRef
	}

	FnRef struct {
		FnName     string
		ImportPath string
	}
)

func (b BeanDefinition) String() string {
	kind := "constructors"
	if b.Factory {
		kind = "factory functions"
	}
	return fmt.Sprintf(
		`✨ Bean: %s
Description: %s
Strict: %t
Prototype: %t
%s: [%s]`,
		b.Named,
		b.Description,
		b.Strict,
		b.Prototype,
		kind,
		strings.Join(slices.Map(b.Fns, func(ref FnRef) string { return ref.ImportPath + "." + ref.FnName }), ", "),
	)
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break // reached root
		}
		dir = parent
	}
	return "."
}

// defaultBeanName derives a bean name from a function name: NewWidget and
// ProvideWidget both become "widget".
func defaultBeanName(fnName string) string {
	name := strings.TrimPrefix(fnName, "New")
	name = strings.TrimPrefix(name, "Provide")
	if name == "" {
		name = fnName
	}
	return strings.ToLower(name[:1]) + name[1:]
}

func main() {
	dryRun := os.Getenv("DRY_RUN") == "true"

	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.DateTime}).
		With().
		Timestamp().
		Logger()

	startScan := time.Now()

	// capture the target file/package, where the generator is invoked
	targetFile := os.Getenv("GOFILE")
	targetPackage := os.Getenv("GOPACKAGE")
	currentDir, _ := os.Getwd()
	targetFilePath := filepath.Join(currentDir, targetFile)

	if targetFile == "" || targetPackage == "" {
		log.Fatal("cradlegen must be invoked through go:generate (GOFILE/GOPACKAGE not set)")
	}

	// switch to the root of the module as we want to scan the whole module
	moduleRoot := findModuleRoot()
	if err := os.Chdir(moduleRoot); err != nil {
		log.Fatalf("Failed to change directory to module root: %v\n", err)
	}

	// analyze all the packages in the module, looking for functions
	// annotated with @bean or @factory
	cfg := &packages.Config{
		Mode: packages.NeedFiles | packages.NeedSyntax,
	}
	pkgs, _ := packages.Load(cfg, "./...")

	beans := make(map[string]*BeanDefinition)
	var order []string

	for _, pkg := range pkgs {
		logger := logger.With().Str("package", pkg.ID).Logger()
		logger.Debug().Msg("Scanning package")
		for _, file := range pkg.Syntax {
			importPath := pkg.ID

			ast.Inspect(file, func(n ast.Node) bool {
				fn, ok := n.(*ast.FuncDecl)
				if !ok || fn.Doc == nil || fn.Recv != nil {
					return true
				}
				docText := fn.Doc.Text()

				var (
					tag     string
					factory bool
				)
				switch {
				case containsAnnotation(docText, beanAnnotationTag):
					tag = beanAnnotationTag
				case containsAnnotation(docText, factoryAnnotationTag):
					tag = factoryAnnotationTag
					factory = true
				default:
					return true
				}

				logger := logger.With().Str("fn", fn.Name.Name).Logger()
				logger.Debug().Msg("=> Found annotated function")

				annotation := parseBeanAnnotation(&logger, docText, tag)
				named, found := annotation.Named()
				if !found {
					named = defaultBeanName(fn.Name.Name)
				}

				bean, exists := beans[named]
				if !exists {
					bean = &BeanDefinition{
						Named:       named,
						Description: annotation.description,
						Factory:     factory,
						Strict:      annotation.Strict(),
						Prototype:   annotation.Prototype(),
					}
					beans[named] = bean
					order = append(order, named)
				} else if bean.Factory != factory {
					logger.Error().Msgf(
						"Bean %q mixes @bean and @factory functions, skipping %s",
						named, fn.Name.Name,
					)
					return true
				}
				bean.Fns = append(bean.Fns, FnRef{FnName: fn.Name.Name, ImportPath: importPath})
				return true
			})
		}
	}

	stopScan := time.Now()

	definitions := make([]BeanDefinition, 0, len(order))
	for _, named := range order {
		definitions = append(definitions, *beans[named])
	}

	logger.Info().Msgf("🎯 %d beans found in the module", len(definitions))
	definitionsLogs := slices.Map(definitions, BeanDefinition.String)
	logger.Debug().Msgf("Beans:\n%s", strings.Join(definitionsLogs, "\n----\n"))
	logger.Info().Msgf("🕵️‍♂️ Scanning completed in %s", stopScan.Sub(startScan))

	// generate the code
	outputPath := filepath.Join(
		filepath.Dir(targetFilePath),
		strings.TrimSuffix(filepath.Base(targetFilePath), ".go")+"_gen.go",
	)
	if dryRun {
		outputPath = filepath.Join("/tmp", filepath.Base(outputPath))
	}

	if err := generateCode(outputPath, targetPackage, definitions); err != nil {
		logger.Error().Err(err).Msgf("Failed to generate code in %s", outputPath)
		os.Exit(1)
	}
	logger.Info().Msgf("✅ Code generated successfully in %s", outputPath)
}

// containsAnnotation reports whether the doc text carries the tag as a
// standalone word, so @factory does not match a @factorybean line.
func containsAnnotation(docText, tag string) bool {
	for _, line := range strings.Split(docText, "\n") {
		line = strings.TrimSpace(line)
		if line == tag || strings.HasPrefix(line, tag+" ") {
			return true
		}
	}
	return false
}
