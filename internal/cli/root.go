// Package cli は社員名簿のターミナルクライアント (cobra) です。
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/ogurasousui/employee-directory/internal/adapters/http/client"
	"github.com/ogurasousui/employee-directory/internal/core/directory"
	"github.com/ogurasousui/employee-directory/internal/core/employee"
	"github.com/spf13/cobra"
)

const (
	// BaseURLEnv は --base-url の既定値を与える環境変数です。
	BaseURLEnv = "EMPDIR_BASE_URL"
	// DefaultBaseURL は環境変数も無い場合の接続先です。
	DefaultBaseURL = "http://localhost:8080"

	dateLayout = "2006-01-02"
)

// StoreFactory は接続先 URL からレコードストアを作ります。
type StoreFactory func(baseURL string, timeout time.Duration) (directory.RecordStore, error)

// Options はコマンドの入出力と依存を差し替えるための設定です。
type Options struct {
	Out      io.Writer
	Err      io.Writer
	NewStore StoreFactory
	Now      func() time.Time
}

type rootOptions struct {
	baseURL string
	timeout time.Duration
}

type app struct {
	opts Options
	root rootOptions
}

// NewRootCommand はサブコマンドを登録したルートコマンドを返します。
func NewRootCommand(opts Options) *cobra.Command {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}
	if opts.NewStore == nil {
		opts.NewStore = newHTTPStore
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	a := &app{opts: opts}

	cmd := &cobra.Command{
		Use:           "directory",
		Short:         "Browse and edit the employee directory",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(opts.Out)
	cmd.SetErr(opts.Err)

	defaultURL := strings.TrimSpace(os.Getenv(BaseURLEnv))
	if defaultURL == "" {
		defaultURL = DefaultBaseURL
	}
	cmd.PersistentFlags().StringVar(&a.root.baseURL, "base-url", defaultURL, "record store base URL (env "+BaseURLEnv+")")
	cmd.PersistentFlags().DurationVar(&a.root.timeout, "timeout", client.DefaultTimeout, "per-request timeout")

	cmd.AddCommand(
		a.newListCmd(),
		a.newGetCmd(),
		a.newAddCmd(),
		a.newUpdateCmd(),
		a.newDeleteCmd(),
		a.newStatsCmd(),
		a.newTrendCmd(),
		a.newDepartmentsCmd(),
	)
	return cmd
}

// Execute はルートコマンドを実行し、終了コードを返します。
func Execute(ctx context.Context, args []string) int {
	cmd := NewRootCommand(Options{})
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", describe(err))
		return 1
	}
	return 0
}

func (a *app) store() (directory.RecordStore, error) {
	return a.opts.NewStore(a.root.baseURL, a.root.timeout)
}

func (a *app) session(pageSize int) (*directory.Session, error) {
	store, err := a.store()
	if err != nil {
		return nil, err
	}
	return directory.NewSession(store, pageSize), nil
}

func (a *app) asOf(raw string) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return a.opts.Now(), nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("--as-of must be YYYY-MM-DD: %w", err)
	}
	// 指定日の終わりまでを含めます。
	return t.Add(24*time.Hour - time.Nanosecond), nil
}

func newHTTPStore(baseURL string, timeout time.Duration) (directory.RecordStore, error) {
	if timeout <= 0 {
		return client.New(baseURL)
	}
	return client.New(baseURL, client.WithHTTPClient(&http.Client{Timeout: timeout}))
}

// notFoundError は id を指定した操作で社員が見つからなかったことを表します。
type notFoundError struct {
	id string
}

func (e notFoundError) Error() string {
	return fmt.Sprintf("employee %s not found", e.id)
}

func (e notFoundError) Unwrap() error {
	return employee.ErrEmployeeNotFound
}

// describe は利用者向けのエラーメッセージを返します。
func describe(err error) string {
	var (
		se *client.StatusError
		nf notFoundError
	)
	switch {
	case errors.As(err, &nf):
		return nf.Error()
	case errors.Is(err, employee.ErrEmployeeNotFound):
		return "employee not found"
	case errors.As(err, &se) && se.Message != "":
		return fmt.Sprintf("server rejected the request (%d): %s", se.StatusCode, se.Message)
	default:
		return err.Error()
	}
}
