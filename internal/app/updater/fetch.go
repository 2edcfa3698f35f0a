package updater

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/mclang/internal/adapter/provider/mojang"
	"github.com/heartmarshall/mclang/internal/domain"
	"github.com/heartmarshall/mclang/internal/langfile"
	"github.com/heartmarshall/mclang/pkg/ctxutil"
)

// runFetch resolves the latest version and downloads every configured
// locale into FullDir. The source locale comes from the client jar, the
// rest from the resource store.
func (p *Pipeline) runFetch(ctx context.Context) PhaseResult {
	if p.deps.Fetcher == nil {
		return PhaseResult{Err: fmt.Errorf("fetcher not configured")}
	}

	manifest, err := p.deps.Fetcher.Manifest(ctx)
	if err != nil {
		return PhaseResult{Err: err}
	}
	ref, err := manifest.LatestRef(p.cfg.Channel)
	if err != nil {
		return PhaseResult{Err: fmt.Errorf("resolve latest %s: %w", p.cfg.Channel, err)}
	}
	p.version = ref.ID
	p.log.InfoContext(ctx, "latest version", slog.String("version", ref.ID), slog.String("channel", p.cfg.Channel))

	details, err := p.deps.Fetcher.VersionDetails(ctx, ref.URL)
	if err != nil {
		return PhaseResult{Err: err}
	}
	index, err := p.deps.Fetcher.AssetIndex(ctx, details.AssetIndex.URL)
	if err != nil {
		return PhaseResult{Err: err}
	}

	if p.cfg.DryRun {
		var result PhaseResult
		for _, loc := range p.cfg.Locales {
			result.add(LocaleOutcome{Locale: loc, Status: StatusSkipped})
		}
		return result
	}

	if p.cfg.VersionFile != "" {
		if err := langfile.WriteAtomic(p.cfg.VersionFile, []byte(ref.ID+"\n")); err != nil {
			return PhaseResult{Err: fmt.Errorf("write version file: %w", err)}
		}
	}

	outcomes := make([]LocaleOutcome, len(p.cfg.Locales))

	var g errgroup.Group
	g.SetLimit(p.cfg.FetchWorkers)
	for i, loc := range p.cfg.Locales {
		g.Go(func() error {
			lctx := ctxutil.WithLocale(ctx, loc.String())
			outcomes[i] = p.fetchLocale(lctx, loc, details, index)
			return nil
		})
	}
	_ = g.Wait()

	var result PhaseResult
	for _, o := range outcomes {
		if o.Err != nil {
			o.Status = domain.ErrorKind(o.Err)
			p.fetchFailed[o.Locale] = true
			p.log.WarnContext(ctx, "locale fetch failed",
				slog.String("locale", o.Locale.String()),
				slog.String("kind", o.Status),
				slog.String("error", o.Err.Error()),
			)
		}
		p.deps.Metrics.ObserveLocale(PhaseFetch, o.Status)
		result.add(o)
	}
	return result
}

func (p *Pipeline) fetchLocale(ctx context.Context, loc domain.Locale, details *mojang.VersionDetails, index *mojang.AssetIndex) LocaleOutcome {
	if err := ctx.Err(); err != nil {
		return LocaleOutcome{Locale: loc, Err: domain.NewLocaleError(loc, PhaseFetch, err)}
	}

	dest := filepath.Join(p.cfg.FullDir, loc.FileName())

	if loc == domain.SourceLocale {
		if err := p.fetchSource(ctx, details, dest); err != nil {
			return LocaleOutcome{Locale: loc, Err: domain.NewLocaleError(loc, PhaseFetch, err)}
		}
		return LocaleOutcome{Locale: loc, Status: StatusOK}
	}

	obj, ok := index.Lang(loc)
	if !ok {
		p.log.InfoContext(ctx, "locale not in asset index", slog.String("locale", loc.String()))
		return LocaleOutcome{Locale: loc, Status: StatusSkipped}
	}

	url, err := p.deps.Fetcher.ResourceURL(obj.Hash)
	if err != nil {
		return LocaleOutcome{Locale: loc, Err: domain.NewLocaleError(loc, PhaseFetch, err)}
	}
	if _, err := p.deps.Fetcher.Download(ctx, url, obj.Hash, dest); err != nil {
		return LocaleOutcome{Locale: loc, Err: domain.NewLocaleError(loc, PhaseFetch, err)}
	}
	return LocaleOutcome{Locale: loc, Status: StatusOK}
}

// fetchSource downloads the client jar, extracts the source language file
// to dest and removes the jar.
func (p *Pipeline) fetchSource(ctx context.Context, details *mojang.VersionDetails, dest string) error {
	dir := p.cfg.TempDir
	if dir == "" {
		dir = os.TempDir()
	}
	jar := filepath.Join(dir, fmt.Sprintf("client-%s.jar", details.ID))
	defer func() {
		if err := os.Remove(jar); err != nil && !os.IsNotExist(err) {
			p.log.WarnContext(ctx, "remove client jar", slog.String("path", jar), slog.String("error", err.Error()))
		}
	}()

	client := details.Downloads.Client
	if _, err := p.deps.Fetcher.Download(ctx, client.URL, client.SHA1, jar); err != nil {
		return fmt.Errorf("client jar: %w", err)
	}
	if _, err := mojang.ExtractFile(jar, mojang.ClientLangMember, dest); err != nil {
		return err
	}
	return nil
}
