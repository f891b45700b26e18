package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/athebyme/gomarket-storefront/config"
	"github.com/athebyme/gomarket-storefront/internal/adapters/gateway"
	"github.com/athebyme/gomarket-storefront/internal/adapters/logger"
	"github.com/athebyme/gomarket-storefront/internal/codec"
	"github.com/athebyme/gomarket-storefront/internal/domain/models"
)

type rootOptions struct {
	configName string
	baseURL    string
	timeout    time.Duration
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "catalogctl",
		Short:         "Запросы к API каталога товаров",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.configName, "config", "", "имя файла конфигурации")
	root.PersistentFlags().StringVar(&opts.baseURL, "base-url", "", "адрес API каталога, перекрывает PRODUCT_API_URL")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 0, "таймаут запроса")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "писать отладочный лог в stderr")

	root.AddCommand(
		newListCmd(opts),
		newGetCmd(opts),
		newDeleteCmd(opts),
	)
	return root
}

func newListCmd(opts *rootOptions) *cobra.Command {
	var (
		query      string
		search     string
		categories []string
		minPrice   float64
		maxPrice   float64
		sortBy     string
		page       int
		pageSize   int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Страница выдачи каталога",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter := codec.Decode(query).Filter()

			flags := cmd.Flags()
			if flags.Changed("search") {
				filter.Search = search
			}
			if flags.Changed("category") {
				filter.Category = categories
			}
			if flags.Changed("min-price") {
				filter.MinPrice = models.PriceBound(minPrice)
			}
			if flags.Changed("max-price") {
				filter.MaxPrice = models.PriceBound(maxPrice)
			}
			if flags.Changed("sort") {
				filter.SortBy = models.SortBy(sortBy)
			}
			if flags.Changed("page") {
				filter.Page = page
			}
			if flags.Changed("page-size") {
				filter.PageSize = pageSize
			}

			client, err := newClient(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			result, err := client.ListProducts(cmd.Context(), filter.Normalize())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}

	f := cmd.Flags()
	f.StringVar(&query, "query", "", "строка запроса витрины, например \"search=lamp&page=2\"")
	f.StringVar(&search, "search", "", "строка поиска")
	f.StringSliceVar(&categories, "category", nil, "категория, можно указать несколько раз")
	f.Float64Var(&minPrice, "min-price", 0, "минимальная цена")
	f.Float64Var(&maxPrice, "max-price", 0, "максимальная цена")
	f.StringVar(&sortBy, "sort", "", "price_asc, price_desc, newest, oldest")
	f.IntVar(&page, "page", 0, "номер страницы")
	f.IntVar(&pageSize, "page-size", 0, "размер страницы")
	return cmd
}

func newGetCmd(opts *rootOptions) *cobra.Command {
	var related bool

	cmd := &cobra.Command{
		Use:   "get <slug>",
		Short: "Карточка товара",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			if related {
				product, err := client.GetProductWithRelated(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), product)
			}

			product, err := client.GetProduct(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), product)
		},
	}

	cmd.Flags().BoolVar(&related, "related", false, "вместе с похожими товарами")
	return cmd
}

func newDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <slug>",
		Short: "Удалить товар",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			result, err := client.DeleteProduct(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
}

func newClient(opts *rootOptions, stderr io.Writer) (*gateway.Client, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	log := logger.NewNop()
	if opts.verbose {
		if log, err = logger.NewZapLogger("debug", false); err != nil {
			return nil, err
		}
		fmt.Fprintf(stderr, "catalogctl: %s\n", cfg.Upstream.BaseURL)
	}

	return gateway.NewClient(gateway.Config{
		BaseURL:            cfg.Upstream.BaseURL,
		Timeout:            cfg.Upstream.Timeout,
		ForwardCredentials: cfg.Upstream.ForwardCredentials,
		RequestedWith:      "catalogctl",
	}, log)
}

// loadConfig флаги перекрывают файл и окружение. Адрес из флага позволяет
// работать без PRODUCT_API_URL.
func loadConfig(opts *rootOptions) (*config.Config, error) {
	if opts.baseURL != "" {
		cfg := &config.Config{}
		cfg.Upstream.BaseURL = opts.baseURL
		cfg.Upstream.Timeout = opts.timeout
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	cfg, err := config.Load(opts.configName)
	if err != nil {
		return nil, err
	}
	if opts.timeout > 0 {
		cfg.Upstream.Timeout = opts.timeout
	}
	return cfg, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
