package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/mizan-mobiles/storefront-go/internal/bootstrap"
	"github.com/mizan-mobiles/storefront-go/internal/domain/cart"
	"github.com/mizan-mobiles/storefront-go/internal/domain/wishlist"
	"github.com/mizan-mobiles/storefront-go/internal/ports"
	"github.com/mizan-mobiles/storefront-go/internal/storefront"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

type commandContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	Client *storefront.Client
}

func main() {
	logger := bootstrap.InitLogger(false)

	if len(os.Args) < 2 {
		if err := printUsage(); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when no command is provided
	}

	cmdName := os.Args[1]
	cmd, ok := commands()[cmdName]
	if !ok {
		if err := writef(os.Stderr, "unknown command %q\n\n", cmdName); err != nil {
			logger.Error("print unknown command message failed", "error", err)
		}
		if err := printUsage(); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when command is unknown
	}

	ctx := context.Background()
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		logger.ErrorContext(ctx, "load config", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
	}
	if cfg.IsDev {
		logger = bootstrap.InitLogger(true)
	}

	deps, err := bootstrap.NewClient(ctx, &cfg, logger)
	if err != nil {
		logger.ErrorContext(ctx, "initialize client", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal initialization failure to callers
	}
	defer func() {
		if cerr := deps.Close(); cerr != nil {
			logger.WarnContext(ctx, "close client failed", "error", cerr)
		}
	}()

	cmdCtx := &commandContext{
		Ctx:    ctx,
		Logger: logger,
		Client: deps.Client,
	}
	if runErr := cmd.run(cmdCtx, os.Args[2:]); runErr != nil {
		logger.ErrorContext(ctx, "command failed", "command", cmdName, "error", runErr)
		os.Exit(1) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}

func commands() map[string]command {
	return map[string]command{
		"login": {
			name:        "login",
			description: "Authenticate with the storefront API",
			run:         runLogin,
		},
		"signup": {
			name:        "signup",
			description: "Register a new account (implies login)",
			run:         runSignup,
		},
		"logout": {
			name:        "logout",
			description: "End the current session",
			run:         runLogout,
		},
		"whoami": {
			name:        "whoami",
			description: "Show the current session's profile",
			run:         runWhoami,
		},
		"profile": {
			name:        "profile",
			description: "Update profile fields on the current session",
			run:         runProfile,
		},
		"cart-add": {
			name:        "cart-add",
			description: "Add a product to the cart (merges duplicate product/offer lines)",
			run:         runCartAdd,
		},
		"cart-rm": {
			name:        "cart-rm",
			description: "Remove a cart line by product (and optional offer)",
			run:         runCartRemove,
		},
		"cart-qty": {
			name:        "cart-qty",
			description: "Set a cart line's quantity (zero removes the line)",
			run:         runCartQuantity,
		},
		"cart-promo": {
			name:        "cart-promo",
			description: "Apply or clear a percentage promo code",
			run:         runCartPromo,
		},
		"cart-clear": {
			name:        "cart-clear",
			description: "Empty the cart",
			run:         runCartClear,
		},
		"cart-show": {
			name:        "cart-show",
			description: "Print cart lines and derived totals",
			run:         runCartShow,
		},
		"wish-add": {
			name:        "wish-add",
			description: "Add a product to the wishlist",
			run:         runWishAdd,
		},
		"wish-rm": {
			name:        "wish-rm",
			description: "Remove a product from the wishlist",
			run:         runWishRemove,
		},
		"wish-ls": {
			name:        "wish-ls",
			description: "List wishlist entries",
			run:         runWishList,
		},
	}
}

func printUsage() error {
	if err := writef(os.Stdout, "Usage: storefront <command> [flags]\n\n"); err != nil {
		return err
	}
	if err := writef(os.Stdout, "Available commands:\n"); err != nil {
		return err
	}
	for _, c := range commands() {
		if err := writef(os.Stdout, "  %-12s %s\n", c.name, c.description); err != nil {
			return err
		}
	}
	return nil
}

func runLogin(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var creds ports.Credentials
	fs.StringVar(&creds.Email, "email", "", "Account email (required)")
	fs.StringVar(&creds.Password, "password", "", "Account password (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	sess, err := cmdCtx.Client.Login(cmdCtx.Ctx, creds)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	return writef(os.Stdout, "Logged in as %s (%s)\n", sess.User.FullName, sess.User.Email)
}

func runSignup(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("signup", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var in ports.SignupInput
	fs.StringVar(&in.FullName, "name", "", "Full name (required)")
	fs.StringVar(&in.Email, "email", "", "Account email (required)")
	fs.StringVar(&in.Password, "password", "", "Account password (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	sess, err := cmdCtx.Client.Signup(cmdCtx.Ctx, in)
	if err != nil {
		return fmt.Errorf("signup: %w", err)
	}
	return writef(os.Stdout, "Registered and logged in as %s (%s)\n", sess.User.FullName, sess.User.Email)
}

func runLogout(cmdCtx *commandContext, _ []string) error {
	cmdCtx.Client.Logout(cmdCtx.Ctx)
	return writeln(os.Stdout, "Logged out. Cart and wishlist are kept on this device.")
}

func runWhoami(cmdCtx *commandContext, _ []string) error {
	sess := cmdCtx.Client.Session()
	if !sess.Authenticated() {
		return writef(os.Stdout, "Not logged in (device %s)\n", cmdCtx.Client.DeviceID())
	}

	u := sess.User
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if err := writef(w, "Name\t%s\n", u.FullName); err != nil {
		return fmt.Errorf("write profile name: %w", err)
	}
	if err := writef(w, "Email\t%s\n", u.Email); err != nil {
		return fmt.Errorf("write profile email: %w", err)
	}
	if err := writef(w, "Role\t%s\n", u.Role); err != nil {
		return fmt.Errorf("write profile role: %w", err)
	}
	if u.Phone != "" {
		if err := writef(w, "Phone\t%s\n", u.Phone); err != nil {
			return fmt.Errorf("write profile phone: %w", err)
		}
	}
	if u.Location != "" {
		if err := writef(w, "Location\t%s\n", u.Location); err != nil {
			return fmt.Errorf("write profile location: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush profile: %w", err)
	}
	return nil
}

func runProfile(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("profile", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var name, phone, bio, location, avatar string
	fs.StringVar(&name, "name", "", "New full name")
	fs.StringVar(&phone, "phone", "", "New phone number")
	fs.StringVar(&bio, "bio", "", "New bio")
	fs.StringVar(&location, "location", "", "New location")
	fs.StringVar(&avatar, "avatar", "", "New avatar URL")
	if err := fs.Parse(args); err != nil {
		return err
	}

	// Only flags the user actually passed become part of the patch; an empty
	// string set explicitly still counts as a change.
	var patch ports.ProfilePatch
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			patch.FullName = &name
		case "phone":
			patch.Phone = &phone
		case "bio":
			patch.Bio = &bio
		case "location":
			patch.Location = &location
		case "avatar":
			patch.Avatar = &avatar
		}
	})
	if patch == (ports.ProfilePatch{}) {
		return errors.New("no profile fields given; pass at least one flag")
	}

	sess, err := cmdCtx.Client.UpdateProfile(cmdCtx.Ctx, patch)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return writef(os.Stdout, "Profile updated for %s\n", sess.User.Email)
}

func runCartAdd(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("cart-add", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var in cart.AddItemInput
	var price, originalPrice string
	var offerID, offerTitle string
	fs.StringVar(&in.ProductID, "product", "", "Product ID (required)")
	fs.StringVar(&in.Name, "name", "", "Product name")
	fs.StringVar(&price, "price", "", "Unit price (required)")
	fs.StringVar(&originalPrice, "original-price", "", "Pre-discount unit price (defaults to price)")
	fs.IntVar(&in.Quantity, "qty", 1, "Quantity to add")
	fs.StringVar(&in.Image, "image", "", "Product image URL")
	fs.StringVar(&offerID, "offer", "", "Offer ID, when adding under an offer")
	fs.StringVar(&offerTitle, "offer-title", "", "Offer title")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var err error
	if in.UnitPrice, err = parsePrice(price, "--price"); err != nil {
		return err
	}
	in.OriginalUnitPrice = in.UnitPrice
	if originalPrice != "" {
		if in.OriginalUnitPrice, err = parsePrice(originalPrice, "--original-price"); err != nil {
			return err
		}
	}
	if offerID != "" {
		in.Offer = &cart.AppliedOffer{ID: offerID, Title: offerTitle}
	}

	if err := cmdCtx.Client.AddItem(cmdCtx.Ctx, in); err != nil {
		return fmt.Errorf("add to cart: %w", err)
	}
	return printCart(cmdCtx.Client)
}

func runCartRemove(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("cart-rm", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var productID, offerID string
	fs.StringVar(&productID, "product", "", "Product ID (required)")
	fs.StringVar(&offerID, "offer", "", "Offer ID of the line, when it was added under an offer")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if productID == "" {
		return errors.New("--product is required")
	}

	cmdCtx.Client.RemoveItem(cmdCtx.Ctx, productID, offerID)
	return printCart(cmdCtx.Client)
}

func runCartQuantity(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("cart-qty", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var productID, offerID string
	var qty int
	fs.StringVar(&productID, "product", "", "Product ID (required)")
	fs.StringVar(&offerID, "offer", "", "Offer ID of the line, when it was added under an offer")
	fs.IntVar(&qty, "qty", 1, "New quantity (zero or less removes the line)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if productID == "" {
		return errors.New("--product is required")
	}

	cmdCtx.Client.SetQuantity(cmdCtx.Ctx, productID, offerID, qty)
	return printCart(cmdCtx.Client)
}

func runCartPromo(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("cart-promo", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var code, percent string
	var clear bool
	fs.StringVar(&code, "code", "", "Promo code to apply")
	fs.StringVar(&percent, "percent", "", "Discount percentage (0 < p <= 100)")
	fs.BoolVar(&clear, "clear", false, "Remove the applied promo code instead")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if clear {
		cmdCtx.Client.RemovePromoCode(cmdCtx.Ctx)
		return printCart(cmdCtx.Client)
	}

	pct, err := parsePrice(percent, "--percent")
	if err != nil {
		return err
	}
	if err := cmdCtx.Client.ApplyPromoCode(cmdCtx.Ctx, code, pct); err != nil {
		return fmt.Errorf("apply promo: %w", err)
	}
	return printCart(cmdCtx.Client)
}

func runCartClear(cmdCtx *commandContext, _ []string) error {
	cmdCtx.Client.ClearCart(cmdCtx.Ctx)
	return writeln(os.Stdout, "Cart cleared")
}

func runCartShow(cmdCtx *commandContext, _ []string) error {
	return printCart(cmdCtx.Client)
}

func runWishAdd(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("wish-add", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var e wishlist.Entry
	var price string
	fs.StringVar(&e.ProductID, "product", "", "Product ID (required)")
	fs.StringVar(&e.Name, "name", "", "Product name")
	fs.StringVar(&price, "price", "", "Product price")
	fs.StringVar(&e.Image, "image", "", "Product image URL")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if e.ProductID == "" {
		return errors.New("--product is required")
	}
	if price != "" {
		var err error
		if e.Price, err = parsePrice(price, "--price"); err != nil {
			return err
		}
	}

	cmdCtx.Client.AddToWishlist(cmdCtx.Ctx, e)
	return printWishlist(cmdCtx.Client)
}

func runWishRemove(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("wish-rm", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var productID string
	fs.StringVar(&productID, "product", "", "Product ID (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if productID == "" {
		return errors.New("--product is required")
	}

	cmdCtx.Client.RemoveFromWishlist(cmdCtx.Ctx, productID)
	return printWishlist(cmdCtx.Client)
}

func runWishList(cmdCtx *commandContext, _ []string) error {
	return printWishlist(cmdCtx.Client)
}

func printCart(client *storefront.Client) error {
	lines := client.CartLines()
	if len(lines) == 0 {
		return writeln(os.Stdout, "Cart is empty")
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if err := writeln(w, "Product\tName\tQty\tUnit\tTotal\tOffer\tPromo"); err != nil {
		return fmt.Errorf("write cart header: %w", err)
	}
	for _, line := range lines {
		offer := "-"
		if line.Offer != nil {
			offer = line.Offer.ID
		}
		promo := line.PromoCode
		if promo == "" {
			promo = "-"
		}
		if err := writef(w, "%s\t%s\t%d\t%s\t%s\t%s\t%s\n",
			line.ProductID, line.Name, line.Quantity,
			line.UnitPrice.StringFixed(2), line.LineTotal().StringFixed(2),
			offer, promo); err != nil {
			return fmt.Errorf("write cart line %q: %w", line.ProductID, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush cart lines: %w", err)
	}

	totals := client.CartTotals()
	if err := writef(os.Stdout, "\nSubtotal %s  Shipping %s  Tax %s  Total %s\n",
		totals.Subtotal.StringFixed(2), totals.Shipping.StringFixed(2),
		totals.Tax.StringFixed(2), totals.Total.StringFixed(2)); err != nil {
		return fmt.Errorf("write cart totals: %w", err)
	}
	return nil
}

func printWishlist(client *storefront.Client) error {
	entries := client.WishlistEntries()
	if len(entries) == 0 {
		return writeln(os.Stdout, "Wishlist is empty")
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if err := writeln(w, "Product\tName\tPrice"); err != nil {
		return fmt.Errorf("write wishlist header: %w", err)
	}
	for _, e := range entries {
		if err := writef(w, "%s\t%s\t%s\n", e.ProductID, e.Name, e.Price.StringFixed(2)); err != nil {
			return fmt.Errorf("write wishlist entry %q: %w", e.ProductID, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush wishlist: %w", err)
	}
	return nil
}

func parsePrice(s, flagName string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Decimal{}, fmt.Errorf("%s is required", flagName)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%s: not a valid amount %q", flagName, s)
	}
	return d, nil
}

func writef(w io.Writer, format string, args ...any) error {
	if _, err := fmt.Fprintf(w, format, args...); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func writeln(w io.Writer, args ...any) error {
	if _, err := fmt.Fprintln(w, args...); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
