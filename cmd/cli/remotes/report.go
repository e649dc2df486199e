package remotes

import (
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/temirov/gitremote/internal/remote"
)

const (
	reportFieldTemplateConstant       = "%s:\t%s\n"
	reportReferenceTemplateConstant   = "%s\t%s\n"
	reportRemoteLabelConstant         = "remote"
	reportURLLabelConstant            = "url"
	reportRepositoryLabelConstant     = "repository"
	reportEngineLabelConstant         = "engine"
	reportDirectionLabelConstant      = "direction"
	reportSessionLabelConstant        = "session"
	reportConnectedLabelConstant      = "connected"
	reportReferenceCountLabelConstant = "references"
	reportWriteErrorTemplateConstant  = "unable to write report: %w"
)

// ConnectionReport summarizes a remote and, after a connection, what it advertised.
type ConnectionReport struct {
	RemoteName        string             `yaml:"remote"`
	RemoteURL         string             `yaml:"url"`
	Repository        string             `yaml:"repository"`
	Engine            string             `yaml:"engine"`
	Direction         string             `yaml:"direction,omitempty"`
	SessionIdentifier string             `yaml:"session_id,omitempty"`
	Connected         bool               `yaml:"connected"`
	References        []remote.Reference `yaml:"references,omitempty"`
}

func writeReport(output io.Writer, format string, report ConnectionReport) error {
	switch format {
	case OutputYAML:
		encoder := yaml.NewEncoder(output)
		encoder.SetIndent(2)
		if encodeError := encoder.Encode(report); encodeError != nil {
			return fmt.Errorf(reportWriteErrorTemplateConstant, encodeError)
		}
		if closeError := encoder.Close(); closeError != nil {
			return fmt.Errorf(reportWriteErrorTemplateConstant, closeError)
		}
		return nil
	default:
		return writeTextReport(output, report)
	}
}

func writeTextReport(output io.Writer, report ConnectionReport) error {
	fields := [][2]string{
		{reportRemoteLabelConstant, report.RemoteName},
		{reportURLLabelConstant, report.RemoteURL},
		{reportRepositoryLabelConstant, report.Repository},
		{reportEngineLabelConstant, report.Engine},
	}
	if len(report.Direction) > 0 {
		fields = append(fields, [2]string{reportDirectionLabelConstant, report.Direction})
	}
	if len(report.SessionIdentifier) > 0 {
		fields = append(fields, [2]string{reportSessionLabelConstant, report.SessionIdentifier})
	}
	fields = append(fields, [2]string{reportConnectedLabelConstant, strconv.FormatBool(report.Connected)})
	if report.Connected {
		fields = append(fields, [2]string{reportReferenceCountLabelConstant, strconv.Itoa(len(report.References))})
	}

	for _, field := range fields {
		if _, writeError := fmt.Fprintf(output, reportFieldTemplateConstant, field[0], field[1]); writeError != nil {
			return fmt.Errorf(reportWriteErrorTemplateConstant, writeError)
		}
	}
	for _, reference := range report.References {
		if _, writeError := fmt.Fprintf(output, reportReferenceTemplateConstant, reference.Target, reference.Name); writeError != nil {
			return fmt.Errorf(reportWriteErrorTemplateConstant, writeError)
		}
	}
	return nil
}
