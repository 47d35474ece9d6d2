package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"text/tabwriter"

	"cartify/internal/client/apiclient"
	"cartify/internal/client/cartstore"
	"cartify/internal/client/checkout"
	"cartify/internal/client/session"
	"cartify/internal/client/storage"
	"cartify/internal/domain"
	"github.com/shopspring/decimal"
)

var errUsage = errors.New("usage")

type app struct {
	api      *apiclient.Client
	cart     *cartstore.Store
	sessions *session.Manager
	out      io.Writer
}

type productView struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Currency string          `json:"currency"`
	InStock  bool            `json:"in_stock"`
	ImageURL string          `json:"image_url"`
}

func newApp(apiURL, dir string, out io.Writer, logger *log.Logger) (*app, error) {
	api, err := apiclient.New(apiURL, apiclient.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	store, err := storage.NewFileStorage(dir)
	if err != nil {
		return nil, err
	}
	return &app{
		api:      api,
		cart:     cartstore.Open(store, logger),
		sessions: session.NewManager(api, store, logger),
		out:      out,
	}, nil
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "register":
		return a.register(ctx, args)
	case "login":
		return a.login(ctx, args)
	case "logout":
		return a.logout(ctx, args)
	case "products":
		return a.products(ctx, args)
	case "add":
		return a.add(ctx, args)
	case "remove":
		return a.remove(args)
	case "qty":
		return a.setQuantity(args)
	case "cart":
		return a.showCart()
	case "checkout":
		return a.checkout(ctx, args)
	default:
		return errUsage
	}
}

func (a *app) register(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	var resp struct {
		Message string `json:"message"`
	}
	err := a.api.Do(ctx, "/auth/register", apiclient.Request{
		Method: http.MethodPost,
		Body:   map[string]string{"email": args[0], "password": args[1]},
	}, &resp)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, resp.Message)
	return nil
}

func (a *app) login(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	sess, err := a.sessions.SignIn(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "signed in as %s\n", sess.User.Email)
	return nil
}

func (a *app) logout(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("logout", flag.ContinueOnError)
	all := fs.Bool("all", false, "revoke every session of the account")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if err := a.sessions.SignOut(ctx, *all); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "signed out")
	return nil
}

func (a *app) fetchProducts(ctx context.Context, categoryID string) ([]productView, error) {
	path := "/products"
	if categoryID != "" {
		path += "?category_id=" + url.QueryEscape(categoryID)
	}
	var resp struct {
		Products []productView `json:"products"`
	}
	if err := a.api.Do(ctx, path, apiclient.Request{}, &resp); err != nil {
		return nil, err
	}
	return resp.Products, nil
}

func (a *app) products(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("products", flag.ContinueOnError)
	category := fs.String("category", "", "filter by category id")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	products, err := a.fetchProducts(ctx, *category)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE\tSTOCK")
	for _, p := range products {
		stock := "in stock"
		if !p.InStock {
			stock = "sold out"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s %s\t%s\n", p.ID, p.Name, p.Price.StringFixed(2), p.Currency, stock)
	}
	return tw.Flush()
}

func (a *app) add(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	qty := fs.Int("qty", 1, "quantity")
	color := fs.String("color", "", "color variant")
	size := fs.String("size", "", "size variant")
	if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
		return errUsage
	}

	var resp struct {
		Product productView `json:"product"`
	}
	if err := a.api.Do(ctx, "/products/"+url.PathEscape(fs.Arg(0)), apiclient.Request{}, &resp); err != nil {
		return err
	}
	p := resp.Product
	if !p.InStock {
		return fmt.Errorf("%s is out of stock", p.Name)
	}
	line, err := a.cart.Add(cartstore.Product{ID: p.ID, Name: p.Name, Price: p.Price, ImageURL: p.ImageURL}, *qty, *color, *size)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s x%d (line %s)\n", line.Product.Name, line.Quantity, line.ID)
	return nil
}

func (a *app) remove(args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	found, err := a.cart.Remove(args[0])
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("no cart line %s", args[0])
	}
	return a.showCart()
}

func (a *app) setQuantity(args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	q, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid quantity %q", args[1])
	}
	found, err := a.cart.SetQuantity(args[0], q)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("no cart line %s", args[0])
	}
	return a.showCart()
}

func (a *app) showCart() error {
	lines := a.cart.Lines()
	if len(lines) == 0 {
		fmt.Fprintln(a.out, "cart is empty")
		return nil
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "LINE\tPRODUCT\tVARIANT\tQTY\tPRICE")
	for _, l := range lines {
		variant := l.Color
		if l.Size != "" {
			if variant != "" {
				variant += "/"
			}
			variant += l.Size
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", l.ID, l.Product.Name, variant, l.Quantity, l.Product.Price.StringFixed(2))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	a.printQuote(checkout.QuoteFor(a.cart.Total()))
	return nil
}

func (a *app) printQuote(q checkout.Quote) {
	fmt.Fprintf(a.out, "subtotal %s  shipping %s  tax %s  total %s\n",
		q.Subtotal.StringFixed(2), q.Shipping.StringFixed(2), q.Tax.StringFixed(2), q.Total.StringFixed(2))
}

func (a *app) checkout(ctx context.Context, args []string) error {
	var ship domain.ShippingAddress
	fs := flag.NewFlagSet("checkout", flag.ContinueOnError)
	fs.StringVar(&ship.Email, "email", "", "contact email")
	fs.StringVar(&ship.FirstName, "first-name", "", "first name")
	fs.StringVar(&ship.LastName, "last-name", "", "last name")
	fs.StringVar(&ship.Address, "address", "", "street address")
	fs.StringVar(&ship.City, "city", "", "city")
	fs.StringVar(&ship.State, "state", "", "state")
	fs.StringVar(&ship.ZipCode, "zip", "", "postal code")
	fs.StringVar(&ship.Country, "country", "India", "country")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	flow, err := checkout.Begin(a.cart, a.sessions, a.api)
	switch {
	case errors.Is(err, checkout.ErrLoginRequired):
		return errors.New("log in first: cartify login <email> <password>")
	case errors.Is(err, checkout.ErrCartEmpty):
		return errors.New("your cart is empty: cartify add <product-id>")
	case err != nil:
		return err
	}
	if ship.Email == "" {
		if sess := a.sessions.Current(); sess != nil {
			ship.Email = sess.User.Email
		}
	}

	a.printQuote(flow.Quote())
	order, err := flow.Submit(ctx, ship)
	if err != nil {
		if msg := flow.LastError(); msg != "" {
			return fmt.Errorf("checkout failed: %s", msg)
		}
		return err
	}
	fmt.Fprintf(a.out, "order %s placed: %s %s (%s)\n", order.ID, order.Total.StringFixed(2), order.Currency, order.Status)
	return nil
}
