package models

import (
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"go-dhis2bridge/utils/dbutils"
)

// reconcileSet converges a local child collection against a remote one.
// Every local entry is matched against the remotes; a matched remote is
// consumed so it cannot match twice, and onMatch refreshes the local
// entry (and recurses into its own children). An unmatched local entry
// has vanished upstream and is deleted. Remotes left over after the
// local walk are new and get created last, so the local cardinality
// never exceeds the remote's mid-pass. The same shape serves all five
// tree levels and the cartesian mapping expansion, which reconciles
// against a synthesized collection instead of a fetched one.
func reconcileSet[L any, R any](locals []L, remotes []R, match func(L, R) bool,
	onMatch func(L, R) error, onVanished func(L) error, onNew func(R) error) error {
	remaining := make([]R, len(remotes))
	copy(remaining, remotes)

	for i := range locals {
		idx := -1
		for j := range remaining {
			if match(locals[i], remaining[j]) {
				idx = j
				break
			}
		}
		if idx >= 0 {
			matched := remaining[idx]
			remaining = append(remaining[:idx], remaining[idx+1:]...)
			if err := onMatch(locals[i], matched); err != nil {
				return err
			}
		} else if err := onVanished(locals[i]); err != nil {
			return err
		}
	}
	for i := range remaining {
		if err := onNew(remaining[i]); err != nil {
			return err
		}
	}
	return nil
}

// Syncer walks a server's remote metadata tree and converges the local
// mirror to it
type Syncer struct {
	db     *sqlx.DB
	client *Client
}

// NewSyncer returns a Syncer using the given store and client
func NewSyncer(db *sqlx.DB, client *Client) *Syncer {
	return &Syncer{db: db, client: client}
}

// SyncServer runs one full reconciliation pass for the server. The
// server's sync_time and validated flag are set exactly once, after the
// cascade completes or on the first error. Partial mutations are kept,
// re-running the pass converges from any intermediate state.
func (s *Syncer) SyncServer(server *Server) error {
	err := s.syncTree(server)
	server.SetSyncStatus(s.db, err == nil)
	if err != nil {
		return errors.Wrapf(err, "sync of server %s failed", server.Name)
	}
	log.WithFields(log.Fields{"server": server.Name}).Info("Server synced")
	return nil
}

func (s *Syncer) syncTree(server *Server) error {
	// /me doubles as the credential probe and the org unit listing
	me, err := s.client.GetMe()
	if err != nil {
		return err
	}
	if err := s.syncOrgUnits(server, me.OrganisationUnits); err != nil {
		return err
	}

	// category combos must be in place before data sets link to them
	combos, err := s.client.GetCategoryCombos()
	if err != nil {
		return err
	}
	if err := s.syncCategoryCombos(server, combos); err != nil {
		return err
	}

	dataSets, err := s.client.GetDataSets()
	if err != nil {
		return err
	}
	return s.syncDataSets(server, dataSets)
}

func (s *Syncer) syncOrgUnits(server *Server, remotes []RemoteRef) error {
	locals, err := OrgUnitsForServer(s.db, server.ID)
	if err != nil {
		return err
	}
	return reconcileSet(locals, remotes,
		func(local OrgUnit, remote RemoteRef) bool { return local.OrgUnitID == remote.ID },
		func(local OrgUnit, _ RemoteRef) error {
			detail, err := s.client.GetOrgUnit(local.OrgUnitID)
			if err != nil {
				return err
			}
			if detail.DisplayName == local.Name {
				return nil
			}
			return local.UpdateName(s.db, detail.DisplayName)
		},
		func(local OrgUnit) error {
			log.WithField("orgUnit", local.OrgUnitID).Info("Organisation unit vanished upstream")
			return local.Delete(s.db)
		},
		func(remote RemoteRef) error {
			detail, err := s.client.GetOrgUnit(remote.ID)
			if err != nil {
				return err
			}
			_, err = CreateOrgUnit(s.db, OrgUnit{
				ServerID:  server.ID,
				OrgUnitID: detail.ID,
				Name:      detail.DisplayName,
			})
			return err
		})
}

func (s *Syncer) syncCategoryCombos(server *Server, remotes []RemoteRef) error {
	locals, err := CategoryCombosForServer(s.db, server.ID)
	if err != nil {
		return err
	}
	return reconcileSet(locals, remotes,
		func(local CategoryCombo, remote RemoteRef) bool { return local.CategoryComboID == remote.ID },
		func(local CategoryCombo, _ RemoteRef) error {
			return s.syncCategoryCombo(&local)
		},
		func(local CategoryCombo) error {
			log.WithField("categoryCombo", local.CategoryComboID).Info("Category combo vanished upstream")
			return local.Delete(s.db)
		},
		func(remote RemoteRef) error {
			detail, err := s.client.GetCategoryCombo(remote.ID)
			if err != nil {
				return err
			}
			combo, err := CreateCategoryCombo(s.db, CategoryCombo{
				ServerID:          server.ID,
				CategoryComboID:   detail.ID,
				Name:              detail.DisplayName,
				DataDimensionType: detail.DataDimensionType,
			})
			if err != nil {
				return err
			}
			// populate the new branch in the same pass
			return s.syncOptionCombos(&combo, detail.CategoryOptionCombos)
		})
}

func (s *Syncer) syncCategoryCombo(combo *CategoryCombo) error {
	detail, err := s.client.GetCategoryCombo(combo.CategoryComboID)
	if err != nil {
		return err
	}
	if detail.DisplayName != combo.Name || detail.DataDimensionType != combo.DataDimensionType {
		if err := combo.Update(s.db, detail.DisplayName, detail.DataDimensionType); err != nil {
			return err
		}
	}
	return s.syncOptionCombos(combo, detail.CategoryOptionCombos)
}

func (s *Syncer) syncOptionCombos(combo *CategoryCombo, remotes []RemoteRef) error {
	locals, err := OptionCombosForCombo(s.db, combo.ID)
	if err != nil {
		return err
	}
	return reconcileSet(locals, remotes,
		func(local CategoryOptionCombo, remote RemoteRef) bool {
			return local.CategoryOptionComboID == remote.ID
		},
		func(local CategoryOptionCombo, _ RemoteRef) error {
			detail, err := s.client.GetCategoryOptionCombo(local.CategoryOptionComboID)
			if err != nil {
				return err
			}
			if detail.DisplayName == local.Name {
				return nil
			}
			return local.UpdateName(s.db, detail.DisplayName)
		},
		func(local CategoryOptionCombo) error {
			return local.Delete(s.db)
		},
		func(remote RemoteRef) error {
			detail, err := s.client.GetCategoryOptionCombo(remote.ID)
			if err != nil {
				return err
			}
			_, err = CreateCategoryOptionCombo(s.db, CategoryOptionCombo{
				ServerID:              combo.ServerID,
				CategoryComboRef:      combo.ID,
				CategoryOptionComboID: detail.ID,
				Name:                  detail.DisplayName,
			})
			return err
		})
}

func (s *Syncer) syncDataSets(server *Server, remotes []RemoteRef) error {
	locals, err := DataSetsForServer(s.db, server.ID)
	if err != nil {
		return err
	}
	return reconcileSet(locals, remotes,
		func(local DataSet, remote RemoteRef) bool { return local.DataSetID == remote.ID },
		func(local DataSet, _ RemoteRef) error {
			return s.syncDataSet(server, &local)
		},
		func(local DataSet) error {
			log.WithField("dataSet", local.DataSetID).Info("Data set vanished upstream")
			return local.Delete(s.db)
		},
		func(remote RemoteRef) error {
			detail, err := s.client.GetDataSet(remote.ID)
			if err != nil {
				return err
			}
			combo, err := GetCategoryComboByUID(s.db, server.ID, detail.CategoryCombo.ID)
			if err != nil {
				return errors.Wrapf(err,
					"category combo %s of data set %s is not mirrored", detail.CategoryCombo.ID, detail.ID)
			}
			dataSet, err := CreateDataSet(s.db, DataSet{
				ServerID:         server.ID,
				DataSetID:        detail.ID,
				Name:             detail.DisplayName,
				PeriodType:       detail.PeriodType,
				CategoryComboRef: dbutils.Int(combo.ID),
			})
			if err != nil {
				return err
			}
			return s.syncDataElements(&dataSet, dataSetElementRefs(detail))
		})
}

func (s *Syncer) syncDataSet(server *Server, dataSet *DataSet) error {
	detail, err := s.client.GetDataSet(dataSet.DataSetID)
	if err != nil {
		return err
	}
	combo, err := GetCategoryComboByUID(s.db, server.ID, detail.CategoryCombo.ID)
	if err != nil {
		return errors.Wrapf(err,
			"category combo %s of data set %s is not mirrored", detail.CategoryCombo.ID, dataSet.DataSetID)
	}
	if detail.DisplayName != dataSet.Name || detail.PeriodType != dataSet.PeriodType ||
		int64(dataSet.CategoryComboRef) != combo.ID {
		if err := dataSet.Update(s.db, detail.DisplayName, detail.PeriodType, combo.ID); err != nil {
			return err
		}
	}
	return s.syncDataElements(dataSet, dataSetElementRefs(detail))
}

func dataSetElementRefs(detail *DataSetDetail) []RemoteRef {
	return lo.Map(detail.DataSetElements, func(ref DataSetElementRef, _ int) RemoteRef {
		return ref.DataElement
	})
}

func (s *Syncer) syncDataElements(dataSet *DataSet, remotes []RemoteRef) error {
	locals, err := DataElementsForSet(s.db, dataSet.ID)
	if err != nil {
		return err
	}
	return reconcileSet(locals, remotes,
		func(local DataElement, remote RemoteRef) bool { return local.DataElementID == remote.ID },
		func(local DataElement, _ RemoteRef) error {
			return s.syncDataElement(dataSet, &local)
		},
		func(local DataElement) error {
			log.WithField("dataElement", local.DataElementID).Info("Data element vanished upstream")
			return local.Delete(s.db)
		},
		func(remote RemoteRef) error {
			detail, err := s.client.GetDataElement(remote.ID)
			if err != nil {
				return err
			}
			combo, err := GetCategoryComboByUID(s.db, dataSet.ServerID, detail.CategoryCombo.ID)
			if err != nil {
				return errors.Wrapf(err,
					"category combo %s of data element %s is not mirrored", detail.CategoryCombo.ID, detail.ID)
			}
			element, err := CreateDataElement(s.db, DataElement{
				DataSetRef:       dataSet.ID,
				DataElementID:    detail.ID,
				Name:             detail.DisplayName,
				AggregationType:  detail.AggregationType,
				ValueType:        detail.ValueType,
				DomainType:       detail.DomainType,
				CategoryComboRef: combo.ID,
			})
			if err != nil {
				return err
			}
			return s.expandMappings(dataSet, &element)
		})
}

func (s *Syncer) syncDataElement(dataSet *DataSet, element *DataElement) error {
	detail, err := s.client.GetDataElement(element.DataElementID)
	if err != nil {
		return err
	}
	combo, err := GetCategoryComboByUID(s.db, dataSet.ServerID, detail.CategoryCombo.ID)
	if err != nil {
		return errors.Wrapf(err,
			"category combo %s of data element %s is not mirrored", detail.CategoryCombo.ID, element.DataElementID)
	}
	if detail.DisplayName != element.Name || detail.AggregationType != element.AggregationType ||
		detail.ValueType != element.ValueType || detail.DomainType != element.DomainType ||
		combo.ID != element.CategoryComboRef {
		if err := element.Update(s.db, detail, combo.ID); err != nil {
			return err
		}
	}
	return s.expandMappings(dataSet, element)
}
