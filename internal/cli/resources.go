package cli

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/tourism/internal/api"
	"github.com/nao1215/tourism/pkg/gateway"
)

// parseID は引数を正の整数のIDとして解釈する。
func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("IDは正の整数で指定してください: %q", s)
	}
	return id, nil
}

// newGetCommand はgetコマンドを生成する。任意のパスを呼び出してデータを表示する。
func newGetCommand(a *app) *cobra.Command {
	var (
		method     string
		convention string
	)
	cmd := &cobra.Command{
		Use:   "get <path>",
		Short: "任意のAPIパスを呼び出してデータを表示する",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conv, err := gateway.ParseConvention(convention)
			if err != nil {
				return err
			}
			u, err := url.Parse(args[0])
			if err != nil {
				return fmt.Errorf("パスの解析に失敗: %w", err)
			}
			if u.Path == "" {
				return errors.New("パスを指定してください")
			}

			raw, err := check(a.gw.Do(cmd.Context(), gateway.Descriptor{
				Method:     strings.ToUpper(method),
				Path:       u.Path,
				Query:      u.Query(),
				Convention: conv,
			}))
			if err != nil {
				return err
			}
			return renderRaw(a.out, a.flags.output, raw)
		},
	}
	cmd.Flags().StringVarP(&method, "method", "X", http.MethodGet, "HTTPメソッド")
	cmd.Flags().StringVar(&convention, "convention", "", "このパスの成功判定方式（200|0|none）")
	return cmd
}

// newAttractionsCommand はattractionsコマンドを生成する。
func newAttractionsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "attractions",
		Short: "景点を操作する",
	}

	var q api.AttractionQuery
	list := &cobra.Command{
		Use:   "list",
		Short: "景点の一覧を表示する",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			page, err := check(api.ListAttractions(cmd.Context(), a.gw, q))
			if err != nil {
				return err
			}
			return render(a.out, a.flags.output, page)
		},
	}
	addPageFlags(list.Flags(), &q.Page, &q.PerPage)
	list.Flags().StringVar(&q.Keyword, "keyword", "", "名称・説明の検索キーワード")

	var limit int
	hot := &cobra.Command{
		Use:   "hot",
		Short: "人気の景点を表示する",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			items, err := check(api.HotAttractions(cmd.Context(), a.gw, limit))
			if err != nil {
				return err
			}
			return render(a.out, a.flags.output, items)
		},
	}
	hot.Flags().IntVar(&limit, "limit", 0, "表示件数")

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "景点の詳細を表示する",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			attraction, err := check(api.GetAttraction(cmd.Context(), a.gw, id))
			if err != nil {
				return err
			}
			return render(a.out, a.flags.output, attraction)
		},
	}

	like := &cobra.Command{
		Use:   "like <id>",
		Short: "景点にいいねする",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			n, err := check(api.LikeAttraction(cmd.Context(), a.gw, id))
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, successStyle.Render(fmt.Sprintf("いいねしました（%d件）", n)))
			return nil
		},
	}

	cmd.AddCommand(list, hot, show, like)
	return cmd
}

// newNotesCommand はnotesコマンドを生成する。
func newNotesCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notes",
		Short: "旅行記を表示する",
	}

	var q api.PageQuery
	list := &cobra.Command{
		Use:   "list",
		Short: "旅行記の一覧を表示する",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			page, err := check(api.ListNotes(cmd.Context(), a.gw, q))
			if err != nil {
				return err
			}
			return render(a.out, a.flags.output, page)
		},
	}
	addPageFlags(list.Flags(), &q.Page, &q.PerPage)

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "旅行記の詳細を表示する",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			note, err := check(api.GetNote(cmd.Context(), a.gw, id))
			if err != nil {
				return err
			}
			return render(a.out, a.flags.output, note)
		},
	}

	cmd.AddCommand(list, show)
	return cmd
}

// newAdminCommand はadminコマンドを生成する。
func newAdminCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "管理画面のAPIを操作する（login --adminでログインしておくこと）",
	}

	var summary bool
	dashboard := &cobra.Command{
		Use:   "dashboard",
		Short: "集計値を表示する",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := check(api.Dashboard(cmd.Context(), a.gw))
			if err != nil {
				return err
			}
			if summary {
				fmt.Fprintln(a.out, sectionStyle.Render("Dashboard"))
				fmt.Fprintln(a.out, infoStyle.Render(fmt.Sprintf(
					"users=%d attractions=%d notes=%d views=%d",
					d.UserCount, d.AttractionCount, d.NoteCount, d.TotalViews)))
				return nil
			}
			return render(a.out, a.flags.output, d)
		},
	}

	dashboard.Flags().BoolVar(&summary, "summary", false, "集計値を1行で表示する")

	remove := &cobra.Command{
		Use:   "delete-attraction <id>",
		Short: "景点を削除する",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if _, err := check(api.DeleteAttraction(cmd.Context(), a.gw, id)); err != nil {
				return err
			}
			fmt.Fprintln(a.out, successStyle.Render(fmt.Sprintf("景点 %d を削除しました", id)))
			return nil
		},
	}

	cmd.AddCommand(dashboard, remove)
	return cmd
}
