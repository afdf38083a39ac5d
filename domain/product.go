package domain

// ProductFields is the editable schema of a catalog product.
type ProductFields struct {
	Title        string  `json:"title"`
	Description  string  `json:"description,omitempty"`
	WeightG      float64 `json:"weight_g,omitempty"`
	LengthCM     float64 `json:"length_cm,omitempty"`
	HeightCM     float64 `json:"height_cm,omitempty"`
	WidthCM      float64 `json:"width_cm,omitempty"`
	CategoryName string  `json:"category_name,omitempty"`
	PhotosQty    int     `json:"photos_qty"`
	AvailableQty int     `json:"available_qty"`
}

func (f *ProductFields) Kind() EntityKind { return KindProduct }

func (f *ProductFields) Clone() FieldSet {
	if f == nil {
		return &ProductFields{}
	}
	clone := *f
	return &clone
}

func (f *ProductFields) Validate() error {
	if f == nil || f.Title == "" {
		return NewError(ErrCodeInvalid, "product title is required")
	}
	if f.WeightG < 0 || f.LengthCM < 0 || f.HeightCM < 0 || f.WidthCM < 0 {
		return NewError(ErrCodeInvalid, "product dimensions must not be negative")
	}
	if f.PhotosQty < 0 || f.AvailableQty < 0 {
		return NewError(ErrCodeInvalid, "product quantities must not be negative")
	}
	return nil
}

func (f *ProductFields) Diff(other FieldSet) []string {
	o, ok := other.(*ProductFields)
	if !ok || f == nil || o == nil {
		return nil
	}
	var changed []string
	if f.Title != o.Title {
		changed = append(changed, "title")
	}
	if f.Description != o.Description {
		changed = append(changed, "description")
	}
	if f.WeightG != o.WeightG {
		changed = append(changed, "weight_g")
	}
	if f.LengthCM != o.LengthCM {
		changed = append(changed, "length_cm")
	}
	if f.HeightCM != o.HeightCM {
		changed = append(changed, "height_cm")
	}
	if f.WidthCM != o.WidthCM {
		changed = append(changed, "width_cm")
	}
	if f.CategoryName != o.CategoryName {
		changed = append(changed, "category_name")
	}
	if f.PhotosQty != o.PhotosQty {
		changed = append(changed, "photos_qty")
	}
	if f.AvailableQty != o.AvailableQty {
		changed = append(changed, "available_qty")
	}
	return changed
}

// ProductPatch is a partial product update. Nil members keep the
// current value.
type ProductPatch struct {
	Title        *string  `json:"title,omitempty"`
	Description  *string  `json:"description,omitempty"`
	WeightG      *float64 `json:"weight_g,omitempty"`
	LengthCM     *float64 `json:"length_cm,omitempty"`
	HeightCM     *float64 `json:"height_cm,omitempty"`
	WidthCM      *float64 `json:"width_cm,omitempty"`
	CategoryName *string  `json:"category_name,omitempty"`
	PhotosQty    *int     `json:"photos_qty,omitempty"`
	AvailableQty *int     `json:"available_qty,omitempty"`
}

func (p *ProductPatch) Kind() EntityKind { return KindProduct }

func (p *ProductPatch) Validate() error {
	if p == nil {
		return NewError(ErrCodeInvalid, "empty product patch")
	}
	if p.Title != nil && *p.Title == "" {
		return NewError(ErrCodeInvalid, "product title must not be empty")
	}
	return nil
}

func (p *ProductPatch) Apply(current FieldSet) (FieldSet, error) {
	base, ok := current.(*ProductFields)
	if !ok {
		return nil, NewError(ErrCodeInvalid, "product patch applied to non-product record")
	}
	next := *base
	if p.Title != nil {
		next.Title = *p.Title
	}
	if p.Description != nil {
		next.Description = *p.Description
	}
	if p.WeightG != nil {
		next.WeightG = *p.WeightG
	}
	if p.LengthCM != nil {
		next.LengthCM = *p.LengthCM
	}
	if p.HeightCM != nil {
		next.HeightCM = *p.HeightCM
	}
	if p.WidthCM != nil {
		next.WidthCM = *p.WidthCM
	}
	if p.CategoryName != nil {
		next.CategoryName = *p.CategoryName
	}
	if p.PhotosQty != nil {
		next.PhotosQty = *p.PhotosQty
	}
	if p.AvailableQty != nil {
		next.AvailableQty = *p.AvailableQty
	}
	if err := next.Validate(); err != nil {
		return nil, err
	}
	return &next, nil
}

// SubmittedValues materializes the patch over current for conflict
// reporting: it is what the record would have looked like had the
// mutation applied.
func (p *ProductPatch) SubmittedValues(current FieldSet) FieldSet {
	applied, err := p.Apply(current)
	if err != nil {
		return current.Clone()
	}
	return applied
}
