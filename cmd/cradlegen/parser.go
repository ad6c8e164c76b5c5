package main

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

type BeanAnnotation struct {
	logger      *zerolog.Logger
	description string
	properties  map[string]string
}

func (a BeanAnnotation) Named() (named string, found bool) {
	named, found = a.properties["named"]
	return named, found
}

func (a BeanAnnotation) Strict() bool {
	return a.boolProperty("strict")
}

func (a BeanAnnotation) Prototype() bool {
	return a.boolProperty("prototype")
}

func (a BeanAnnotation) boolProperty(key string) bool {
	raw, found := a.properties[key]
	if !found {
		return false
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		a.logger.Warn().Msgf("Error parsing %s property: %s, skipping it", key, raw)
		return false
	}
	return value
}

var knownProperties = []string{"named", "strict", "prototype"}

func (a BeanAnnotation) UnknownProperties() []string {
	var unknown []string
	for key := range a.properties {
		if !contains(knownProperties, key) {
			unknown = append(unknown, key)
		}
	}
	return unknown
}

func parseBeanAnnotation(logger *zerolog.Logger, docText string, tag string) BeanAnnotation {
	lines := strings.Split(docText, "\n")

	var descriptionLines []string
	var annotationLine string

	// separate the annotation line from the description
	for _, line := range lines {
		line = strings.TrimSpace(line)

		if strings.HasPrefix(line, tag) {
			annotationLine = line
		} else if line != "" && !strings.HasPrefix(line, "@") {
			descriptionLines = append(descriptionLines, line)
		}
	}

	return BeanAnnotation{
		logger:      logger,
		description: strings.TrimSpace(strings.Join(descriptionLines, "\n")),
		properties:  parseProperties(annotationLine, tag),
	}
}

func parseProperties(line string, tag string) map[string]string {
	properties := make(map[string]string)

	if line == "" {
		return properties
	}

	// remove the annotation tag prefix
	content := strings.TrimPrefix(line, tag)
	content = strings.TrimSpace(content)

	if content == "" {
		return properties
	}

	// regex to match key=value or key="value" patterns
	re := regexp.MustCompile(`(\w+)=(?:"([^"]*)"|(\w+))`)
	matches := re.FindAllStringSubmatch(content, -1)

	for _, match := range matches {
		key := match[1]
		// match[2] is quoted value, match[3] is unquoted value
		value := match[2]
		if value == "" {
			value = match[3]
		}
		properties[key] = value
	}

	return properties
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
