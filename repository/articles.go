package repository

import (
	"context"
	"errors"
	"strings"

	"main/model"
	"main/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrArticleNotFound = errors.New("article not found")

type ArticlesRepo struct {
	MongoCollection *mongo.Collection
}

func GetArticlesRepo(client *mongo.Client, dbName, collectionName string) *ArticlesRepo {
	return &ArticlesRepo{
		MongoCollection: client.Database(dbName).Collection(collectionName),
	}
}

// articleRecord is the store-side shape of an article. Timestamps stay in the
// store's native DateTime type until they cross the repository edge.
type articleRecord struct {
	ID             primitive.ObjectID `bson:"_id"`
	Title          string             `bson:"title"`
	Content        string             `bson:"content"`
	Category       string             `bson:"category"`
	Files          []fileRecord       `bson:"files"`
	CreatedAt      primitive.DateTime `bson:"created_at"`
	CreatedBy      string             `bson:"created_by"`
	Tags           []string           `bson:"tags"`
	IsPrivate      bool               `bson:"is_private"`
	OwnerID        string             `bson:"owner_id"`
	Amendments     []amendmentRecord  `bson:"amendments"`
	LastModified   primitive.DateTime `bson:"last_modified"`
	LastModifiedBy string             `bson:"last_modified_by"`
}

type fileRecord struct {
	Name          string `bson:"name"`
	URL           string `bson:"url"`
	ExtractedText string `bson:"extracted_text"`
	ThumbnailURL  string `bson:"thumbnail_url"`
}

type amendmentRecord struct {
	Timestamp primitive.DateTime `bson:"timestamp"`
	UserID    string             `bson:"user_id"`
	UserEmail string             `bson:"user_email"`
}

// NewArticleID allocates a record identifier for a not-yet-persisted draft.
func NewArticleID() string {
	return primitive.NewObjectID().Hex()
}

func toRecord(article *model.Article) (articleRecord, error) {
	id, err := primitive.ObjectIDFromHex(article.ID)
	if err != nil {
		return articleRecord{}, errors.New("invalid article id")
	}

	files := make([]fileRecord, len(article.Files))
	for i, f := range article.Files {
		files[i] = fileRecord{
			Name:          f.Name,
			URL:           f.URL,
			ExtractedText: f.ExtractedText,
			ThumbnailURL:  f.ThumbnailURL,
		}
	}

	amendments := make([]amendmentRecord, len(article.Amendments))
	for i, a := range article.Amendments {
		amendments[i] = amendmentRecord{
			Timestamp: primitive.NewDateTimeFromTime(a.Timestamp),
			UserID:    a.UserID,
			UserEmail: a.UserEmail,
		}
	}

	return articleRecord{
		ID:             id,
		Title:          article.Title,
		Content:        article.Content,
		Category:       article.Category,
		Files:          files,
		CreatedAt:      primitive.NewDateTimeFromTime(article.CreatedAt),
		CreatedBy:      article.CreatedBy,
		Tags:           article.Tags,
		IsPrivate:      article.IsPrivate,
		OwnerID:        article.OwnerID,
		Amendments:     amendments,
		LastModified:   primitive.NewDateTimeFromTime(article.LastModified),
		LastModifiedBy: article.LastModifiedBy,
	}, nil
}

func fromRecord(rec articleRecord) *model.Article {
	files := make([]model.ArticleFile, len(rec.Files))
	texts := make([]string, len(rec.Files))
	for i, f := range rec.Files {
		files[i] = model.ArticleFile{
			Name:          f.Name,
			URL:           f.URL,
			ExtractedText: f.ExtractedText,
			ThumbnailURL:  f.ThumbnailURL,
		}
		texts[i] = f.ExtractedText
	}

	// Missing amendments default to an empty log, never nil.
	amendments := make([]model.Amendment, len(rec.Amendments))
	for i, a := range rec.Amendments {
		amendments[i] = model.Amendment{
			Timestamp: a.Timestamp.Time(),
			UserID:    a.UserID,
			UserEmail: a.UserEmail,
		}
	}

	ownerID := rec.OwnerID
	if ownerID == "" {
		ownerID = "anonymous"
	}

	tags := rec.Tags
	if tags == nil {
		tags = []string{}
	}

	return &model.Article{
		ID:       rec.ID.Hex(),
		Title:    rec.Title,
		Content:  rec.Content,
		Category: rec.Category,
		Files:    files,
		// Article-level extracted text is recomputed on every fetch, not
		// stored separately.
		ExtractedText:  strings.Join(texts, " "),
		CreatedAt:      rec.CreatedAt.Time(),
		CreatedBy:      rec.CreatedBy,
		Tags:           tags,
		IsPrivate:      rec.IsPrivate,
		OwnerID:        ownerID,
		Amendments:     amendments,
		LastModified:   rec.LastModified.Time(),
		LastModifiedBy: rec.LastModifiedBy,
	}
}

// FetchAll retrieves every article in the collection, newest first.
func (r *ArticlesRepo) FetchAll(ctx context.Context) ([]*model.Article, error) {
	timer := utils.TrackDBOperation("find", "articles")
	defer timer.ObserveDuration()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.MongoCollection.Find(ctx, bson.M{}, opts)
	if err != nil {
		utils.TrackError("database", "articles_fetch_failed")
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []articleRecord
	if err = cursor.All(ctx, &records); err != nil {
		utils.TrackError("database", "articles_decode_failed")
		return nil, err
	}

	articles := make([]*model.Article, len(records))
	for i, rec := range records {
		articles[i] = fromRecord(rec)
	}
	return articles, nil
}

// GetArticle retrieves a single article by its id.
func (r *ArticlesRepo) GetArticle(ctx context.Context, articleID string) (*model.Article, error) {
	timer := utils.TrackDBOperation("find", "articles")
	defer timer.ObserveDuration()

	id, err := primitive.ObjectIDFromHex(articleID)
	if err != nil {
		return nil, ErrArticleNotFound
	}

	var rec articleRecord
	err = r.MongoCollection.FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrArticleNotFound
		}
		utils.TrackError("database", "article_lookup_error")
		return nil, err
	}
	return fromRecord(rec), nil
}

// SaveArticle writes the full record, creating it when absent. Last write
// wins; no concurrency token is checked.
func (r *ArticlesRepo) SaveArticle(ctx context.Context, article *model.Article) error {
	timer := utils.TrackDBOperation("replace", "articles")
	defer timer.ObserveDuration()

	rec, err := toRecord(article)
	if err != nil {
		return err
	}

	opts := options.Replace().SetUpsert(true)
	_, err = r.MongoCollection.ReplaceOne(ctx, bson.M{"_id": rec.ID}, rec, opts)
	if err != nil {
		utils.TrackError("database", "article_save_failed")
		return err
	}
	return nil
}

// DeleteArticle removes the record. Attachment blobs are not touched here;
// only the update reconciliation path removes blobs.
func (r *ArticlesRepo) DeleteArticle(ctx context.Context, articleID string) error {
	timer := utils.TrackDBOperation("delete", "articles")
	defer timer.ObserveDuration()

	id, err := primitive.ObjectIDFromHex(articleID)
	if err != nil {
		return ErrArticleNotFound
	}

	result, err := r.MongoCollection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		utils.TrackError("database", "article_delete_failed")
		return err
	}
	if result.DeletedCount == 0 {
		return ErrArticleNotFound
	}
	return nil
}
