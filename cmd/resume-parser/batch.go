package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"resume-parser-go/internal/logger"
	"resume-parser-go/internal/processor"
	"resume-parser-go/internal/report"
	"resume-parser-go/internal/storage"
)

var batchCmd = &cobra.Command{
	Use:   "batch [dir]",
	Short: "Parse every supported resume in a directory or MinIO prefix",
	Long: "Parse every PDF, DOCX and TXT resume found in a local directory, or under a MinIO prefix when --minio is set. " +
		"Results are written to stdout as JSON lines.",
	Args: cobra.MaximumNArgs(1),
	RunE: runBatch,
}

var (
	batchFromMinIO    bool
	batchPrefix       string
	batchConcurrency  int
	batchReportPath   string
	batchUploadReport string
)

func init() {
	batchCmd.Flags().BoolVar(&batchFromMinIO, "minio", false, "从 MinIO 读取简历")
	batchCmd.Flags().StringVar(&batchPrefix, "prefix", "", "MinIO 对象前缀，默认使用配置中的 minio.prefix")
	batchCmd.Flags().IntVarP(&batchConcurrency, "concurrency", "n", 4, "并发解析数")
	batchCmd.Flags().StringVar(&batchReportPath, "report", "", "写出 Excel 汇总到本地文件")
	batchCmd.Flags().StringVar(&batchUploadReport, "upload-report", "", "把 Excel 汇总上传到 MinIO 的对象名")
	rootCmd.AddCommand(batchCmd)
}

// batchSource 一份待解析的简历
type batchSource struct {
	Name string
	Load func(ctx context.Context) ([]byte, error)
}

// batchResult 输出的一行 JSON
type batchResult struct {
	Source   string              `json:"source"`
	Analysis *processor.Analysis `json:"analysis,omitempty"`
	Cached   bool                `json:"cached"`
	Error    string              `json:"error,omitempty"`
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !batchFromMinIO && len(args) == 0 {
		return fmt.Errorf("需要指定目录，或使用 --minio")
	}
	if batchFromMinIO || batchUploadReport != "" {
		cfg.MinIO.Enabled = true
	}

	ctx := cmd.Context()
	application, err := newApplication(ctx, cfg)
	if err != nil {
		return err
	}
	defer application.Close(ctx)

	var sources []batchSource
	if batchFromMinIO {
		prefix := batchPrefix
		if prefix == "" {
			prefix = cfg.MinIO.Prefix
		}
		sources, err = minioSources(ctx, application, prefix)
	} else {
		sources, err = dirSources(args[0], application)
	}
	if err != nil {
		return err
	}
	logger.Info().Int("count", len(sources)).Int("concurrency", batchConcurrency).Msg("开始批量解析")

	results := parseAll(ctx, application, sources, batchConcurrency)

	enc := json.NewEncoder(cmd.OutOrStdout())
	failed := 0
	for _, r := range results {
		if r.Error != "" {
			failed++
		}
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	logger.Info().Int("total", len(results)).Int("failed", failed).Msg("批量解析完成")

	if batchReportPath == "" && batchUploadReport == "" {
		return nil
	}
	return writeReport(ctx, application.storage, results)
}

func dirSources(dir string, a *application) ([]batchSource, error) {
	var sources []batchSource
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !a.extractor.Supports(path) {
			return nil
		}
		p := path
		sources = append(sources, batchSource{
			Name: p,
			Load: func(context.Context) ([]byte, error) { return os.ReadFile(p) },
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("遍历目录失败: %w", err)
	}
	return sources, nil
}

func minioSources(ctx context.Context, a *application, prefix string) ([]batchSource, error) {
	if a.storage.MinIO == nil {
		return nil, fmt.Errorf("MinIO 不可用，请检查 minio 配置")
	}
	objects, err := a.storage.MinIO.ListDocuments(ctx, prefix)
	if err != nil {
		return nil, err
	}
	var sources []batchSource
	for _, obj := range objects {
		if !a.extractor.Supports(obj.Key) {
			continue
		}
		key := obj.Key
		sources = append(sources, batchSource{
			Name: key,
			Load: func(ctx context.Context) ([]byte, error) { return a.storage.MinIO.DownloadFile(ctx, key) },
		})
	}
	return sources, nil
}

// parseAll 单份简历失败只记录在结果中，不中断整个批次
func parseAll(ctx context.Context, a *application, sources []batchSource, concurrency int) []batchResult {
	if concurrency < 1 {
		concurrency = 1
	}
	results := make([]batchResult, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			results[i] = parseOne(gctx, a, src)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func parseOne(ctx context.Context, a *application, src batchSource) batchResult {
	res := batchResult{Source: src.Name}
	log := logger.Component("batch").With().Str("source", src.Name).Logger()

	data, err := src.Load(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("读取简历失败")
		res.Error = err.Error()
		return res
	}
	text, _, err := a.extractor.Extract(ctx, src.Name, data)
	if err != nil {
		log.Warn().Err(err).Msg("文档转文本失败")
		res.Error = err.Error()
		return res
	}
	analysis, cached, err := a.service.ParseText(ctx, text)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Analysis = analysis
	res.Cached = cached
	return res
}

func writeReport(ctx context.Context, st *storage.Storage, results []batchResult) error {
	rows := make([]report.Row, 0, len(results))
	for _, r := range results {
		row := report.Row{Source: r.Source, Err: r.Error}
		if r.Analysis != nil {
			row.Record = r.Analysis.Record
			row.Education = len(r.Analysis.Sections.Education)
			row.Confidence = r.Analysis.ConfidenceScore
		}
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Confidence > rows[j].Confidence })

	var buf bytes.Buffer
	if err := report.WriteXLSX(&buf, rows); err != nil {
		return err
	}

	if batchReportPath != "" {
		if err := os.WriteFile(batchReportPath, buf.Bytes(), 0644); err != nil {
			return fmt.Errorf("写出报告失败: %w", err)
		}
		logger.Info().Str("path", batchReportPath).Msg("Excel 报告已写出")
	}
	if batchUploadReport != "" {
		if st.MinIO == nil {
			return fmt.Errorf("MinIO 不可用，无法上传报告")
		}
		key, err := st.MinIO.UploadFile(ctx, batchUploadReport, bytes.NewReader(buf.Bytes()), int64(buf.Len()))
		if err != nil {
			return err
		}
		logger.Info().Str("object", key).Msg("Excel 报告已上传")
	}
	return nil
}
