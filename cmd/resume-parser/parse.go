package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"resume-parser-go/internal/processor"
)

var parseCmd = &cobra.Command{
	Use:   "parse <file|->",
	Short: "Parse a single resume and print the record as JSON",
	Long:  "Parse a PDF, DOCX or TXT resume. Use - to read plain text from stdin.",
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

var (
	parseWithMeta       bool
	parseRequiredSkills string
	parseRecruiterEmail string
)

func init() {
	parseCmd.Flags().BoolVar(&parseWithMeta, "meta", false, "输出完整响应 (包含置信度和匹配结果)")
	parseCmd.Flags().StringVar(&parseRequiredSkills, "required-skills", "", "逗号分隔的岗位技能要求")
	parseCmd.Flags().StringVar(&parseRecruiterEmail, "recruiter-email", "", "入围时通知的招聘方邮箱")
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	application, err := newApplication(ctx, cfg)
	if err != nil {
		return err
	}
	defer application.Close(ctx)

	filename, data, err := readInput(args[0], cmd.InOrStdin())
	if err != nil {
		return err
	}

	resp, err := application.service.ParseDocument(ctx, processor.Upload{
		Filename:       filename,
		Data:           data,
		RequiredSkills: parseRequiredSkills,
		RecruiterEmail: parseRecruiterEmail,
	})
	if err != nil {
		return err
	}

	var out interface{} = resp.Data
	if parseWithMeta {
		out = resp
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// readInput "-" 表示从标准输入读取纯文本
func readInput(arg string, stdin io.Reader) (string, []byte, error) {
	if arg == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", nil, fmt.Errorf("读取标准输入失败: %w", err)
		}
		return "stdin.txt", data, nil
	}
	data, err := os.ReadFile(arg)
	if err != nil {
		return "", nil, fmt.Errorf("读取文件失败: %w", err)
	}
	return filepath.Base(arg), data, nil
}
