package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"go.uber.org/zap"

	"github.com/vinsara/storefront/internal/api"
	"github.com/vinsara/storefront/internal/auth"
	"github.com/vinsara/storefront/internal/cart"
	cartpg "github.com/vinsara/storefront/internal/cart/postgres"
	"github.com/vinsara/storefront/internal/checkout"
	"github.com/vinsara/storefront/internal/config"
	"github.com/vinsara/storefront/internal/coupon"
	"github.com/vinsara/storefront/internal/domain"
	"github.com/vinsara/storefront/internal/gateway"
	"github.com/vinsara/storefront/internal/pricing"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	var logger *zap.Logger
	if cfg.Environment == "production" {
		logger, _ = zap.NewProduction()
	} else {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	app, err := newApp(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start: %v\n", err)
		os.Exit(1)
	}
	defer app.close()

	ctx := context.Background()
	if err := app.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("Usage: storefront <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  products [-category NAME] [-new]    list the catalog")
	fmt.Println("  cart show                           show the cart and totals")
	fmt.Println("  cart add <slug> <size> [qty]        add a product to the cart")
	fmt.Println("  cart set <product-id> <size> <qty>  set a line quantity (0 removes)")
	fmt.Println("  cart rm <product-id> <size>         remove a line")
	fmt.Println("  cart clear                          empty the cart")
	fmt.Println("  coupon apply <code>                 validate and apply a discount code")
	fmt.Println("  coupon remove                       remove the applied code")
	fmt.Println("  checkout -email .. -first-name ..   place the order and pay")
	fmt.Println("  orders                              show order history")
	fmt.Println("  signup -email .. -password ..       create an account and sign in")
	fmt.Println("  login -email .. -password ..        sign in")
	fmt.Println("  logout                              sign out and clear the cart")
}

type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	tokens    *auth.TokenStore
	client    *api.Client
	cartStore *cart.Store
	coupons   *coupon.Validator
	orch      *checkout.Orchestrator
	pgStore   *cartpg.Store
}

func newApp(cfg *config.Config, logger *zap.Logger) (*app, error) {
	tokens := auth.NewTokenStore(cfg.Storage.TokenPath, logger)
	client := api.NewClient(cfg.API, tokens, logger)

	var persistence cart.Persistence
	var pgStore *cartpg.Store
	if cfg.Storage.PostgresDSN != "" {
		var err error
		pgStore, err = cartpg.Open(cfg.Storage.PostgresDSN, logger)
		if err != nil {
			return nil, err
		}
		persistence = pgStore
	} else {
		persistence = cart.NewFileStore(cfg.Storage.CartPath)
	}

	cartStore := cart.NewStore(persistence, logger)
	coupons := coupon.NewValidator(client, coupon.NewFileStore(cfg.Storage.CouponPath), logger)
	gw := gateway.NewRazorpayCheckout(cfg.Gateway, logger)
	orch := checkout.NewOrchestrator(
		cartStore, client, gw, coupons, tokens,
		cfg.Poll.MaxAttempts, cfg.Poll.Delay, logger,
	)

	return &app{
		cfg:       cfg,
		logger:    logger,
		tokens:    tokens,
		client:    client,
		cartStore: cartStore,
		coupons:   coupons,
		orch:      orch,
		pgStore:   pgStore,
	}, nil
}

func (a *app) close() {
	a.orch.Close()
	if a.pgStore != nil {
		a.pgStore.Close()
	}
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "products":
		return a.products(ctx, args)
	case "cart":
		return a.cart(ctx, args)
	case "coupon":
		return a.coupon(ctx, args)
	case "checkout":
		return a.checkout(ctx, args)
	case "orders":
		return a.orders(ctx)
	case "signup":
		return a.signup(ctx, args)
	case "login":
		return a.login(ctx, args)
	case "logout":
		a.tokens.Clear()
		a.cartStore.Clear()
		a.coupons.Remove()
		fmt.Println("Signed out.")
		return nil
	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func (a *app) products(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("products", flag.ExitOnError)
	category := fs.String("category", "", "filter by category")
	newOnly := fs.Bool("new", false, "only new arrivals")
	fs.Parse(args)

	products, err := a.client.Products(ctx, api.ProductFilter{
		Category: *category,
		NewOnly:  *newOnly,
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SLUG\tTITLE\tPRICE\tSIZES")
	for _, p := range products {
		fmt.Fprintf(w, "%s\t%s\t%s\t%v\n", p.Slug, p.Title, p.Price.StringFixed(2), p.Sizes)
	}
	return w.Flush()
}

func (a *app) cart(ctx context.Context, args []string) error {
	if len(args) == 0 {
		args = []string{"show"}
	}

	switch args[0] {
	case "show":
		return a.cartShow(ctx)
	case "add":
		if len(args) < 3 {
			return fmt.Errorf("usage: cart add <slug> <size> [qty]")
		}
		qty := 1
		if len(args) > 3 {
			n, err := strconv.Atoi(args[3])
			if err != nil || n < 1 {
				return fmt.Errorf("invalid quantity %q", args[3])
			}
			qty = n
		}
		product, err := a.client.ProductBySlug(ctx, args[1])
		if err != nil {
			return err
		}
		a.cartStore.AddItem(domain.CartLine{
			ProductID: product.ID,
			SKU:       product.SKU,
			Title:     product.Title,
			UnitPrice: product.Price,
			Image:     product.Image,
			Size:      args[2],
			Quantity:  qty,
		})
		fmt.Printf("Added %s (%s) x%d.\n", product.Title, args[2], qty)
		return nil
	case "set":
		if len(args) < 4 {
			return fmt.Errorf("usage: cart set <product-id> <size> <qty>")
		}
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid product id %q", args[1])
		}
		qty, err := strconv.Atoi(args[3])
		if err != nil {
			return fmt.Errorf("invalid quantity %q", args[3])
		}
		a.cartStore.UpdateQuantity(id, args[2], qty)
		return a.cartShow(ctx)
	case "rm":
		if len(args) < 3 {
			return fmt.Errorf("usage: cart rm <product-id> <size>")
		}
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid product id %q", args[1])
		}
		a.cartStore.RemoveItem(id, args[2])
		return a.cartShow(ctx)
	case "clear":
		a.cartStore.Clear()
		a.coupons.Remove()
		fmt.Println("Cart cleared.")
		return nil
	default:
		return fmt.Errorf("unknown cart command %q", args[0])
	}
}

func (a *app) cartShow(ctx context.Context) error {
	lines := a.cartStore.Lines()
	if len(lines) == 0 {
		fmt.Println("Your cart is empty.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tSIZE\tQTY\tPRICE\tTOTAL")
	for _, line := range lines {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%s\n",
			line.ProductID, line.Title, line.Size, line.Quantity,
			line.UnitPrice.StringFixed(2), line.LineTotal().StringFixed(2),
		)
	}
	w.Flush()

	subtotal := a.cartStore.Subtotal()
	fmt.Printf("\nItems: %d  Subtotal: %s\n", a.cartStore.Count(), subtotal.StringFixed(2))

	// Show the full breakdown when the config is reachable; the subtotal
	// alone is still useful offline.
	siteConfig, err := a.client.FetchSiteConfig(ctx)
	if err != nil {
		a.logger.Debug("Site config unavailable", zap.Error(err))
		return nil
	}

	quote := pricing.Compute(subtotal, *siteConfig, a.coupons.Discount())
	if applied := a.coupons.Applied(); applied != nil {
		fmt.Printf("Coupon %s: -%s\n", applied.Code, quote.DiscountAmount.StringFixed(2))
	}
	if quote.IsFreeShipping {
		fmt.Println("Shipping: FREE")
	} else {
		fmt.Printf("Shipping: %s\n", quote.ShippingCost.StringFixed(2))
	}
	fmt.Printf("Tax: %s\nTotal: %s\n", quote.TaxAmount.StringFixed(2), quote.FinalTotal.StringFixed(2))
	return nil
}

func (a *app) coupon(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: coupon apply <code> | coupon remove")
	}

	switch args[0] {
	case "apply":
		if len(args) < 2 {
			return fmt.Errorf("usage: coupon apply <code>")
		}
		applied, err := a.coupons.Apply(ctx, args[1], a.cartStore.Subtotal())
		if err != nil {
			return err
		}
		fmt.Printf("Applied %s: %s\n", applied.Code, applied.Message)
		return nil
	case "remove":
		a.coupons.Remove()
		fmt.Println("Coupon removed.")
		return nil
	default:
		return fmt.Errorf("unknown coupon command %q", args[0])
	}
}

func (a *app) checkout(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("checkout", flag.ExitOnError)
	email := fs.String("email", "", "contact email")
	firstName := fs.String("first-name", "", "first name")
	lastName := fs.String("last-name", "", "last name")
	address := fs.String("address", "", "street address")
	apartment := fs.String("apartment", "", "apartment, suite, etc.")
	city := fs.String("city", "", "city")
	state := fs.String("state", "", "state")
	postalCode := fs.String("postal-code", "", "postal code")
	country := fs.String("country", "India", "country")
	phone := fs.String("phone", "", "phone number")
	save := fs.Bool("save-address", false, "save this address for next time")
	fs.Parse(args)

	form := checkout.Form{
		Contact: domain.Contact{Email: *email, Phone: *phone},
		Shipping: domain.ShippingAddress{
			FirstName:  *firstName,
			LastName:   *lastName,
			Address:    *address,
			Apartment:  *apartment,
			City:       *city,
			State:      *state,
			PostalCode: *postalCode,
			Country:    *country,
			Phone:      *phone,
		},
		SaveAddress: *save,
	}

	// Fill blank shipping fields from the default saved address. Fetch
	// failures are non-fatal; validation still catches missing fields.
	if form.Shipping.Address == "" || form.Shipping.FirstName == "" {
		if saved, err := a.client.Addresses(ctx); err != nil {
			a.logger.Debug("Saved addresses unavailable", zap.Error(err))
		} else {
			form = prefillShipping(form, saved)
		}
	}

	result, err := a.orch.Checkout(ctx, form)
	if err != nil {
		return err
	}

	fmt.Printf("Order %s placed. Thank you!\n", result.OrderID)
	return nil
}

func (a *app) orders(ctx context.Context) error {
	orders, err := a.client.Orders(ctx)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		fmt.Println("No orders found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ORDER\tPLACED\tTOTAL\tPAYMENT\tSTATUS")
	for _, order := range orders {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			order.ID,
			order.CreatedAt.Format("2006-01-02"),
			order.TotalAmount.StringFixed(2),
			order.PaymentStatus,
			order.OrderStatus,
		)
	}
	return w.Flush()
}

// prefillShipping fills blank shipping fields from the default saved
// address, falling back to the first one. Explicit flag values always win.
func prefillShipping(form checkout.Form, saved []domain.SavedAddress) checkout.Form {
	if len(saved) == 0 {
		return form
	}

	source := saved[0].Address
	for _, s := range saved {
		if s.IsDefault {
			source = s.Address
			break
		}
	}

	fill := func(dst *string, src string) {
		if *dst == "" {
			*dst = src
		}
	}
	fill(&form.Shipping.FirstName, source.FirstName)
	fill(&form.Shipping.LastName, source.LastName)
	fill(&form.Shipping.Address, source.Address)
	fill(&form.Shipping.Apartment, source.Apartment)
	fill(&form.Shipping.City, source.City)
	fill(&form.Shipping.State, source.State)
	fill(&form.Shipping.PostalCode, source.PostalCode)
	fill(&form.Shipping.Phone, source.Phone)
	if form.Contact.Phone == "" {
		form.Contact.Phone = source.Phone
	}
	return form
}

func (a *app) signup(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("signup", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	name := fs.String("name", "", "full name")
	phone := fs.String("phone", "", "phone number")
	fs.Parse(args)

	if *email == "" || *password == "" {
		return fmt.Errorf("usage: signup -email <email> -password <password> [-name <name>] [-phone <phone>]")
	}

	if err := a.client.Signup(ctx, api.SignupRequest{
		Email:     *email,
		Password:  *password,
		FirstName: *name,
		Phone:     *phone,
	}); err != nil {
		return err
	}

	// Account created; log in to obtain the session token.
	token, err := a.client.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	a.tokens.Set(token)
	fmt.Println("Account created. Signed in.")
	return nil
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	fs.Parse(args)

	if *email == "" || *password == "" {
		return fmt.Errorf("usage: login -email <email> -password <password>")
	}

	token, err := a.client.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	a.tokens.Set(token)
	fmt.Println("Signed in.")
	return nil
}
