package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ogurasousui/employee-directory/internal/core/employee"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// employeeDocument は employees コレクションのドキュメント形です。
type employeeDocument struct {
	ID         primitive.ObjectID `bson:"_id"`
	Name       string             `bson:"name"`
	Email      string             `bson:"email"`
	Phone      string             `bson:"phone"`
	JobTitle   string             `bson:"jobTitle"`
	Department string             `bson:"department"`
	HireDate   time.Time          `bson:"hireDate"`
	Salary     float64            `bson:"salary"`
	Projects   []string           `bson:"projects"`
	CreatedAt  time.Time          `bson:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt"`
}

// EmployeeIndexes は employees コレクションに必要なインデックスです。
var EmployeeIndexes = []mongo.IndexModel{
	{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetName("uniq_email").SetUnique(true),
	},
	{
		Keys:    bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}},
		Options: options.Index().SetName("idx_createdAt_id"),
	},
}

// EmployeeRepository は MongoDB を利用した社員永続化の実装です。
type EmployeeRepository struct {
	coll *mongo.Collection
}

// NewEmployeeRepository は EmployeeRepository を生成します。
func NewEmployeeRepository(coll *mongo.Collection) *EmployeeRepository {
	return &EmployeeRepository{coll: coll}
}

// EnsureIndexes はメールアドレスの一意制約を含むインデックスを作成します。起動時に一度呼びます。
func (r *EmployeeRepository) EnsureIndexes(ctx context.Context) error {
	if _, err := r.coll.Indexes().CreateMany(ctx, EmployeeIndexes); err != nil {
		return fmt.Errorf("mongodb: create indexes: %w", err)
	}
	return nil
}

// Create は社員を新規作成します。ID は ObjectID の 16 進表現です。
func (r *EmployeeRepository) Create(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	doc := toDocument(e)
	doc.ID = primitive.NewObjectID()

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, translateMongoError(err)
	}
	return doc.toEntity(), nil
}

// Update は社員情報を更新し、更新後のドキュメントを返します。
func (r *EmployeeRepository) Update(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	oid, err := primitive.ObjectIDFromHex(e.ID)
	if err != nil {
		return nil, employee.ErrEmployeeNotFound
	}

	doc := toDocument(e)
	update := bson.M{"$set": bson.M{
		"name":       doc.Name,
		"email":      doc.Email,
		"phone":      doc.Phone,
		"jobTitle":   doc.JobTitle,
		"department": doc.Department,
		"hireDate":   doc.HireDate,
		"salary":     doc.Salary,
		"projects":   doc.Projects,
		"updatedAt":  doc.UpdatedAt,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated employeeDocument
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&updated); err != nil {
		return nil, translateMongoError(err)
	}
	return updated.toEntity(), nil
}

// Delete は社員を削除します。
func (r *EmployeeRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return employee.ErrEmployeeNotFound
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return translateMongoError(err)
	}
	if res.DeletedCount == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

// FindByID は ID で社員を取得します。ObjectID として解釈できない ID は存在しない扱いです。
func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (*employee.Employee, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, employee.ErrEmployeeNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

// FindByEmail はメールアドレスで社員を取得します。
func (r *EmployeeRepository) FindByEmail(ctx context.Context, email string) (*employee.Employee, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// List は全社員を作成順で取得します。
func (r *EmployeeRepository) List(ctx context.Context) ([]*employee.Employee, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, translateMongoError(err)
	}
	defer cursor.Close(ctx)

	var docs []employeeDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, translateMongoError(err)
	}

	employees := make([]*employee.Employee, 0, len(docs))
	for i := range docs {
		employees = append(employees, docs[i].toEntity())
	}
	return employees, nil
}

func (r *EmployeeRepository) findOne(ctx context.Context, filter bson.M) (*employee.Employee, error) {
	var doc employeeDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, translateMongoError(err)
	}
	return doc.toEntity(), nil
}

func toDocument(e *employee.Employee) employeeDocument {
	projects := e.Projects
	if projects == nil {
		projects = []string{}
	}
	return employeeDocument{
		Name:       e.Name,
		Email:      e.Email,
		Phone:      e.Phone,
		JobTitle:   e.JobTitle,
		Department: e.Department,
		HireDate:   e.HireDate.UTC(),
		Salary:     e.Salary,
		Projects:   projects,
		CreatedAt:  e.CreatedAt.UTC(),
		UpdatedAt:  e.UpdatedAt.UTC(),
	}
}

func (d *employeeDocument) toEntity() *employee.Employee {
	projects := d.Projects
	if projects == nil {
		projects = []string{}
	}
	return &employee.Employee{
		ID:         d.ID.Hex(),
		Name:       d.Name,
		Email:      d.Email,
		Phone:      d.Phone,
		JobTitle:   d.JobTitle,
		Department: d.Department,
		HireDate:   d.HireDate.UTC(),
		Salary:     d.Salary,
		Projects:   projects,
		CreatedAt:  d.CreatedAt.UTC(),
		UpdatedAt:  d.UpdatedAt.UTC(),
	}
}

func translateMongoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return employee.ErrEmployeeNotFound
	case mongo.IsDuplicateKeyError(err):
		return employee.ErrEmailAlreadyExists
	default:
		return err
	}
}
