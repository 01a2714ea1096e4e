package models

import (
	"fmt"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// OptionPair is one reporting cell of a data element: an attribute
// option from the data set's category combo crossed with a category
// option from the element's own combo
type OptionPair struct {
	Attribute CategoryOptionCombo
	Category  CategoryOptionCombo
}

// CartesianPairs builds the full attribute × category option product
func CartesianPairs(attributeOptions, categoryOptions []CategoryOptionCombo) []OptionPair {
	pairs := make([]OptionPair, 0, len(attributeOptions)*len(categoryOptions))
	for _, attribute := range attributeOptions {
		for _, category := range categoryOptions {
			pairs = append(pairs, OptionPair{Attribute: attribute, Category: category})
		}
	}
	return pairs
}

// MappingName is the generated display name of a data mapping cell
func MappingName(elementName, attributeName, categoryName string) string {
	return fmt.Sprintf("%s (%s) - %s", elementName, attributeName, categoryName)
}

// expandMappings converges the element's data mappings to exactly the
// cartesian product of its reporting cells. Mappings whose cell still
// exists keep their query and active flag; mappings whose cell is gone
// are deleted; missing cells get a fresh inert mapping.
func (s *Syncer) expandMappings(dataSet *DataSet, element *DataElement) error {
	if dataSet.CategoryComboRef == 0 {
		return errors.Errorf("data set %s has no category combo link", dataSet.DataSetID)
	}
	attributeOptions, err := OptionCombosForCombo(s.db, int64(dataSet.CategoryComboRef))
	if err != nil {
		return err
	}
	categoryOptions, err := OptionCombosForCombo(s.db, element.CategoryComboRef)
	if err != nil {
		return err
	}
	pairs := CartesianPairs(attributeOptions, categoryOptions)

	locals, err := MappingsForElement(s.db, element.ID)
	if err != nil {
		return err
	}
	return reconcileSet(locals, pairs,
		func(local DataMapping, pair OptionPair) bool {
			return local.AttributeOptionRef == pair.Attribute.ID &&
				local.CategoryOptionRef == pair.Category.ID
		},
		func(local DataMapping, pair OptionPair) error {
			name := MappingName(element.Name, pair.Attribute.Name, pair.Category.Name)
			if name == local.Name {
				return nil
			}
			return local.UpdateName(s.db, name)
		},
		func(local DataMapping) error {
			log.WithField("mapping", local.Name).Info("Mapping cell no longer exists, deleting")
			return local.Delete(s.db)
		},
		func(pair OptionPair) error {
			_, err := CreateDataMapping(s.db, DataMapping{
				DataElementRef:     element.ID,
				AttributeOptionRef: pair.Attribute.ID,
				CategoryOptionRef:  pair.Category.ID,
				Name:               MappingName(element.Name, pair.Attribute.Name, pair.Category.Name),
			})
			return err
		})
}
