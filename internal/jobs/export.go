package jobs

import (
	"context"

	"github.com/google/renameio/v2"
	"github.com/sirupsen/logrus"
)

const exportFileMode = 0o644

type Exporter interface {
	Export(ctx context.Context) (string, error)
}

var _ CronJob = (*ExportTask)(nil)

// ExportTask writes the graph export to a file. The file is replaced
// atomically so readers never see a partial graph.
type ExportTask struct {
	exporter Exporter
	path     string
	cron     string
}

func NewExportTask(schedule string, path string, exporter Exporter) *ExportTask {
	return &ExportTask{
		exporter: exporter,
		path:     path,
		cron:     schedule,
	}
}

func (e *ExportTask) Name() string {
	return "export"
}

func (e *ExportTask) Schedule() string {
	return e.cron
}

func (e *ExportTask) Run() {
	if err := e.Export(context.Background()); err != nil {
		logrus.Errorf("export to %s failed: %v", e.path, err)
		return
	}
	logrus.Debugf("exported graph to %s", e.path)
}

func (e *ExportTask) Export(ctx context.Context) error {
	graph, err := e.exporter.Export(ctx)
	if err != nil {
		return err
	}

	return WriteFileAtomic(e.path, []byte(graph))
}

// WriteFileAtomic replaces path with data so readers see either the old or the new file.
func WriteFileAtomic(path string, data []byte) error {
	return renameio.WriteFile(path, data, exportFileMode)
}
