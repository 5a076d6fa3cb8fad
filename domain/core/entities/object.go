package entities

import (
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	pkgerrors "hard-backend/pkg/errors"
)

// Table layout shared by every object type.
const (
	PartitionAttribute = "User_ObjectType"
	SortAttribute      = "Timestamp"
	IDAttribute        = "object_id"
	Delimiter          = "#"

	// TimestampLayout is fixed width so sort keys order lexically.
	TimestampLayout = "2006-01-02T15:04:05.000000Z07:00"
)

// ObjectType discriminates the entity variants sharing the table.
type ObjectType string

const (
	ObjectTypeWorkout      ObjectType = "Workout"
	ObjectTypeExercise     ObjectType = "Exercise"
	ObjectTypeSet          ObjectType = "Set"
	ObjectTypeTag          ObjectType = "Tag"
	ObjectTypeExerciseJoin ObjectType = "ExerciseJoin"
	ObjectTypeTagJoin      ObjectType = "TagJoin"
	ObjectTypeTemplate     ObjectType = "Template"
)

func (t ObjectType) String() string { return string(t) }

// Item is a single row in the table.
type Item map[string]types.AttributeValue

// Object carries the attributes every stored entity has.
// UserID, Timestamp, ObjectType and ObjectID are core attributes and never
// change after creation.
type Object struct {
	UserID     string     `json:"user_id"`
	Timestamp  time.Time  `json:"timestamp"`
	ObjectType ObjectType `json:"object_type"`
	ObjectID   uuid.UUID  `json:"object_id"`
}

// Meta returns the shared attributes of the entity.
func (o *Object) Meta() *Object { return o }

// Partition is the partition key value of the row.
func (o *Object) Partition() string {
	return PartitionKey(o.UserID, o.ObjectType)
}

// SortKey is the sort key value of the row.
func (o *Object) SortKey() string {
	return FormatTimestamp(o.Timestamp)
}

// GenerateID assigns a fresh random identity. It fails if one is already set.
func (o *Object) GenerateID() error {
	if o.ObjectID != uuid.Nil {
		return pkgerrors.NewIdentityAlreadyAssignedError(o.ObjectID.String())
	}
	id, err := uuid.NewRandom()
	if err != nil {
		return fmt.Errorf("generate object_id: %w", err)
	}
	o.ObjectID = id
	return nil
}

// OwnedBy reports whether userID owns the object.
func (o *Object) OwnedBy(userID string) bool {
	return o.UserID == userID
}

// Attribute is a named attribute rendered as its stored string form.
type Attribute struct {
	Name  string
	Value string
}

// CoreAttributes lists the immutable attributes in a stable order.
func (o *Object) CoreAttributes() []Attribute {
	return []Attribute{
		{Name: "user_id", Value: o.UserID},
		{Name: "timestamp", Value: FormatTimestamp(o.Timestamp)},
		{Name: "object_type", Value: string(o.ObjectType)},
		{Name: IDAttribute, Value: o.ObjectID.String()},
	}
}

// PartitionKey builds "{userID}#{objectType}".
func PartitionKey(userID string, objectType ObjectType) string {
	return userID + Delimiter + string(objectType)
}

// CheckUserID rejects user ids that cannot be stored in a partition key.
func CheckUserID(userID string) error {
	if strings.Contains(userID, Delimiter) {
		return pkgerrors.NewInvalidPartitionError(
			fmt.Sprintf("user_id '%s' contains the '%s' delimiter", userID, Delimiter))
	}
	return nil
}

// NormalizeTimestamp reduces t to what the sort key keeps.
func NormalizeTimestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

// FormatTimestamp renders t in UTC with microsecond precision.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp accepts the table layout and plain RFC 3339.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(TimestampLayout, s)
	if err != nil {
		t, err = time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
		}
	}
	return t.UTC(), nil
}

// keys is embedded in every row struct.
type keys struct {
	Partition string `dynamodbav:"User_ObjectType"`
	Sort      string `dynamodbav:"Timestamp"`
	ObjectID  string `dynamodbav:"object_id"`
}

func (o *Object) keys() keys {
	k := keys{
		Partition: o.Partition(),
		Sort:      o.SortKey(),
	}
	if o.ObjectID != uuid.Nil {
		k.ObjectID = o.ObjectID.String()
	}
	return k
}

func (o *Object) loadKeys(k keys) error {
	userID, objectType, err := SplitPartition(k.Partition)
	if err != nil {
		return err
	}
	o.UserID = userID
	o.ObjectType = objectType

	if k.Sort != "" {
		ts, err := ParseTimestamp(k.Sort)
		if err != nil {
			return pkgerrors.NewDataIntegrityError("malformed sort key").WithCause(err)
		}
		o.Timestamp = ts
	}

	o.ObjectID = uuid.Nil
	if k.ObjectID != "" {
		id, err := uuid.Parse(k.ObjectID)
		if err != nil {
			return pkgerrors.NewDataIntegrityError(
				fmt.Sprintf("malformed object_id: '%s'", k.ObjectID)).WithCause(err)
		}
		o.ObjectID = id
	}
	return nil
}

// SplitPartition breaks a partition key into its user id and object type.
func SplitPartition(partition string) (string, ObjectType, error) {
	if partition == "" {
		return "", "", pkgerrors.NewMissingPartitionError(
			fmt.Sprintf("row has no `%s` attribute", PartitionAttribute))
	}
	userID, objectType, ok := strings.Cut(partition, Delimiter)
	if !ok {
		return "", "", pkgerrors.NewInvalidPartitionError(
			fmt.Sprintf("partition '%s' has no '%s' delimiter", partition, Delimiter))
	}
	return userID, ObjectType(objectType), nil
}

// PartitionOf reads a row's partition key.
func PartitionOf(item Item) (string, error) {
	return stringAttribute(item, PartitionAttribute)
}

// ObjectTypeOf reads the object type from a row's partition key.
func ObjectTypeOf(item Item) (ObjectType, error) {
	partition, err := PartitionOf(item)
	if err != nil {
		return "", err
	}
	_, objectType, err := SplitPartition(partition)
	return objectType, err
}

func stringAttribute(item Item, name string) (string, error) {
	av, ok := item[name]
	if !ok {
		return "", nil
	}
	var s string
	if err := attributevalue.Unmarshal(av, &s); err != nil {
		return "", pkgerrors.NewDataIntegrityError(
			fmt.Sprintf("attribute `%s` is not a string", name)).WithCause(err)
	}
	return s, nil
}

// Record is satisfied only by pointers to the entity types of this package.
// The unexported methods keep the set of storable types closed.
type Record[T any] interface {
	*T
	Meta() *Object
	Kind() ObjectType
	row() any
	load(Item) error
}

// MarshalItem converts an entity to its table row.
func MarshalItem[T any, PT Record[T]](e PT) (Item, error) {
	if err := CheckUserID(e.Meta().UserID); err != nil {
		return nil, err
	}
	av, err := attributevalue.MarshalMap(e.row())
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", e.Kind(), err)
	}
	return av, nil
}

// UnmarshalItem converts a table row into an entity of type T.
func UnmarshalItem[T any, PT Record[T]](item Item) (PT, error) {
	e := PT(new(T))
	if err := e.load(item); err != nil {
		return nil, err
	}
	return e, nil
}

// KindOf returns the object type of T.
func KindOf[T any, PT Record[T]]() ObjectType {
	return PT(new(T)).Kind()
}

// decodeRow unmarshals a row into dst and loads the key attributes into o.
func decodeRow(item Item, dst any, k *keys, o *Object) error {
	if _, ok := item[PartitionAttribute]; !ok {
		return pkgerrors.NewMissingPartitionError(
			fmt.Sprintf("row has no `%s` attribute", PartitionAttribute))
	}
	if err := attributevalue.UnmarshalMap(item, dst); err != nil {
		return pkgerrors.NewDataIntegrityError("malformed row").WithCause(err)
	}
	return o.loadKeys(*k)
}

var attributeNames = map[ObjectType][]string{
	ObjectTypeWorkout:      {"date", "notes"},
	ObjectTypeExercise:     {"name", "description"},
	ObjectTypeSet:          {"set_type", "weight", "unit", "reps", "notes", "exercise_join_id"},
	ObjectTypeTag:          {"name", "color_hex", "for_sets", "for_exercises", "for_workouts"},
	ObjectTypeExerciseJoin: {"workout_id", "exercise_id"},
	ObjectTypeTagJoin:      {"target_id", "tag_id", "target_object_type"},
	ObjectTypeTemplate:     {"name", "description"},
}

// AttributeNames lists the non-core attributes of an object type.
func AttributeNames(objectType ObjectType) []string {
	names := attributeNames[objectType]
	out := make([]string, len(names))
	copy(out, names)
	return out
}

// HasAttribute reports whether rows of objectType can be searched by name.
func HasAttribute(objectType ObjectType, name string) bool {
	if name == IDAttribute {
		_, ok := attributeNames[objectType]
		return ok
	}
	for _, n := range attributeNames[objectType] {
		if n == name {
			return true
		}
	}
	return false
}
