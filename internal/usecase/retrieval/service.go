package retrieval

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/confradar/confradar/internal/cache"
	"github.com/confradar/confradar/internal/db"
	"github.com/confradar/confradar/internal/domain"
	"github.com/confradar/confradar/internal/domain/candidate"
	"github.com/confradar/confradar/internal/domain/query"
	"github.com/confradar/confradar/internal/metrics"
	"github.com/confradar/confradar/internal/repository/document"
	"github.com/confradar/confradar/internal/usecase/geo"
)

// documents is the consumer interface over the document repository.
type documents interface {
	SearchLexical(ctx context.Context, q *db.LexicalQuery) ([]document.Scored, error)
	SearchSemantic(ctx context.Context, q *db.KNNQuery) ([]document.Scored, error)
}

// embedder vectorizes the query text for the semantic branch.
type embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// reranker reorders fused candidates. It never fails.
type reranker interface {
	Rerank(ctx context.Context, query string, cands []candidate.Candidate) []candidate.Candidate
}

// Service orchestrates hybrid retrieval.
type Service struct {
	docs     documents
	embedder embedder
	reranker reranker
	resolver *geo.Resolver
	cache    *cache.Cache
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates the retrieval service.
func NewService(docs documents, emb embedder, rr reranker, resolver *geo.Resolver, c *cache.Cache, logger *zap.Logger) *Service {
	return &Service{
		docs:     docs,
		embedder: emb,
		reranker: rr,
		resolver: resolver,
		cache:    c,
		logger:   logger,
		now:      time.Now,
	}
}

// Search runs the full pipeline for a validated query. It returns
// *domain.CountryMismatchError when a single-country intent retrieves
// candidates outside the requested country that venue resolution cannot
// rescue. Backend failures degrade to the surviving branch, or to an empty
// valid response when both branches fail.
func (s *Service) Search(ctx context.Context, q query.Normalized) (*Response, error) {
	start := s.now()
	log := s.logger.With(zap.String("correlation_id", q.CorrelationID))

	key := s.resultKey(q)
	var cached Response
	if s.cache.Get(ctx, cache.KindResult, key, &cached) {
		cached.Cached = true
		cached.LatencyMs = time.Since(start).Milliseconds()
		s.observe(q, start, true)
		return &cached, nil
	}

	lex, sem, branchErrs := s.retrieve(ctx, q, log)
	if branchErrs == 2 {
		log.Error("Both retrieval branches failed, returning empty result")
		resp := &Response{
			Items:     []Item{},
			Debug:     Debug{BranchErrors: 2},
			LatencyMs: time.Since(start).Milliseconds(),
		}
		s.observe(q, start, false)
		return resp, nil
	}

	normalizeScores(lex)
	normalizeScores(sem)
	cands := merge(lex, sem)

	now := s.now()
	for i := range cands {
		cands[i].ComputeFeatures(now, q.Country)
		cands[i].Fuse()
	}

	debug := Debug{
		LexicalHits:  len(lex),
		SemanticHits: len(sem),
		Merged:       len(cands),
		BranchErrors: branchErrs,
	}

	kept, err := s.enforceCountry(cands, q, log, &debug)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Score > kept[j].Score })
	if len(kept) > q.TopKRerank {
		kept = kept[:q.TopKRerank]
	}
	debug.Reranked = len(kept)

	kept = s.reranker.Rerank(ctx, q.QueryNormalised, kept)

	if len(kept) > q.PageLimit {
		kept = kept[:q.PageLimit]
	}
	items := make([]Item, 0, len(kept))
	for _, c := range kept {
		items = append(items, Item{
			Doc:        c.Doc,
			Score:      c.Score,
			ScoreLex:   c.ScoreLex,
			ScoreSem:   c.ScoreSem,
			ScoreCE:    c.ScoreCE,
			FinalScore: c.FinalScore,
		})
	}

	resp := &Response{
		Items:     items,
		Debug:     debug,
		LatencyMs: time.Since(start).Milliseconds(),
	}
	s.cache.Set(ctx, cache.KindResult, key, resp)
	s.observe(q, start, false)
	return resp, nil
}

// retrieve runs both branches concurrently. Each branch records its own
// failure instead of cancelling the sibling; the count of failed branches is
// returned so the caller can degrade.
func (s *Service) retrieve(ctx context.Context, q query.Normalized, log *zap.Logger) (lex, sem []document.Scored, branchErrs int) {
	from, to := s.publishedWindow(q)
	var lexErr, semErr error

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lex, lexErr = s.docs.SearchLexical(gctx, &db.LexicalQuery{
			Text:          q.QueryASCII,
			Country:       q.Country,
			Languages:     q.LanguagePref,
			PublishedFrom: from,
			PublishedTo:   to,
			TopK:          q.TopKLex,
		})
		return nil
	})
	g.Go(func() error {
		emb, err := s.embedder.Embed(gctx, q.QueryNormalised)
		if err != nil {
			semErr = err
			return nil
		}
		sem, semErr = s.docs.SearchSemantic(gctx, &db.KNNQuery{
			Vector:  emb.Embedding,
			Country: q.Country,
			K:       q.TopKSem,
		})
		return nil
	})
	_ = g.Wait()

	if lexErr != nil {
		branchErrs++
		log.Warn("Lexical branch failed", zap.Error(lexErr))
	}
	if semErr != nil {
		branchErrs++
		log.Warn("Semantic branch failed", zap.Error(semErr))
	}
	return lex, sem, branchErrs
}

// enforceCountry applies the country guard. Mismatched documents without a
// country are run through venue resolution first; a high-confidence match
// rescues the candidate. Remaining offenders abort single-country intents
// and are dropped otherwise.
func (s *Service) enforceCountry(cands []candidate.Candidate, q query.Normalized, log *zap.Logger, debug *Debug) ([]candidate.Candidate, error) {
	v := geo.EnforceCountry(cands, q.Country)

	offenders := v.Mismatched[:0]
	for _, c := range v.Mismatched {
		if c.Doc.Country == "" {
			res := s.resolver.ResolveVenueCountry(c.Doc.Title+" "+c.Doc.Content, c.Doc.SourceTLD, q.Country)
			if res.Confidence == geo.ConfidenceHigh && strings.EqualFold(res.Country, q.Country) {
				c.Doc.Country = q.Country
				c.GeoMatch = 1
				c.Fuse()
				v.Kept = append(v.Kept, c)
				debug.VenueRescued++
				continue
			}
		}
		offenders = append(offenders, c)
	}

	if len(offenders) == 0 {
		return v.Kept, nil
	}

	if q.Intent.SingleCountry() {
		ids := make([]string, 0, len(offenders))
		for _, c := range offenders {
			ids = append(ids, c.Doc.ID)
			log.Warn("Candidate outside requested country",
				zap.String("doc_id", c.Doc.ID),
				zap.String("doc_country", c.Doc.Country),
				zap.String("requested", q.Country))
		}
		return nil, &domain.CountryMismatchError{Requested: q.Country, DocIDs: ids}
	}

	debug.GeoDropped = len(offenders)
	log.Info("Dropped out-of-country candidates", zap.Int("count", len(offenders)))
	return v.Kept, nil
}

func (s *Service) publishedWindow(q query.Normalized) (from, to int64) {
	if q.DateRange != nil {
		return q.DateRange.From.Unix(), q.DateRange.To.Unix()
	}
	if q.FreshnessDays > 0 {
		return s.now().AddDate(0, 0, -q.FreshnessDays).Unix(), 0
	}
	return 0, 0
}

// resultKey keys on the request shape, not the computed published window, so
// a rolling freshness query stays cacheable within the TTL.
func (s *Service) resultKey(q query.Normalized) string {
	var from, to int64
	if q.DateRange != nil {
		from, to = q.DateRange.From.Unix(), q.DateRange.To.Unix()
	}
	return cache.Key(cache.KindResult,
		q.Country,
		string(q.Intent),
		strings.Join(q.LanguagePref, ","),
		strconv.FormatInt(from, 10),
		strconv.FormatInt(to, 10),
		strconv.Itoa(q.FreshnessDays),
		strconv.Itoa(q.PageLimit),
		strconv.Itoa(q.TopKRerank),
		q.QueryNormalised,
	)
}

func (s *Service) observe(q query.Normalized, start time.Time, cached bool) {
	metrics.SearchDuration.
		WithLabelValues(string(q.Intent), strconv.FormatBool(cached)).
		Observe(time.Since(start).Seconds())
}
