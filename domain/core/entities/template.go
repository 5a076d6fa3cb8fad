package entities

// Template is a reusable workout outline.
type Template struct {
	Object
	Name        string `json:"name" validate:"required"`
	Description string `json:"description,omitempty"`
}

func (*Template) Kind() ObjectType { return ObjectTypeTemplate }

type templateRow struct {
	keys
	Name        string `dynamodbav:"name"`
	Description string `dynamodbav:"description,omitempty"`
}

func (t *Template) row() any {
	return templateRow{keys: t.keys(), Name: t.Name, Description: t.Description}
}

func (t *Template) load(item Item) error {
	var r templateRow
	if err := decodeRow(item, &r, &r.keys, &t.Object); err != nil {
		return err
	}
	t.Name = r.Name
	t.Description = r.Description
	return nil
}
