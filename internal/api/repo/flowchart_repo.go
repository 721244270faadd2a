package repo

import (
	"blueprint"
	"blueprint/internal/api/models"

	"gorm.io/gorm"
)

type FlowchartRepository struct {
	Db *gorm.DB
}

func NewFlowchartRepository() *FlowchartRepository {
	return &FlowchartRepository{Db: blueprint.DB}
}

// FindByID retrieves a flowchart with its graph
func (slf *FlowchartRepository) FindByID(id uint) (models.Flowchart, error) {
	var flowchart models.Flowchart
	err := slf.Db.First(&flowchart, id).Error
	return flowchart, err
}

// FindPage lists flowcharts, most recently updated first, along with the
// total count. The graph column is left out since listings never render it.
func (slf *FlowchartRepository) FindPage(offset, limit int) ([]models.Flowchart, int64, error) {
	var total int64
	if err := slf.Db.Model(&models.Flowchart{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var flowcharts []models.Flowchart
	err := slf.Db.Omit("graph").
		Order("updated_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&flowcharts).Error
	return flowcharts, total, err
}

func (slf *FlowchartRepository) Create(flowchart *models.Flowchart) error {
	return slf.Db.Create(flowchart).Error
}

// UpdateGraph replaces the stored graph of a flowchart
func (slf *FlowchartRepository) UpdateGraph(id uint, graph models.Graph) error {
	res := slf.Db.Model(&models.Flowchart{}).Where("id = ?", id).Update("graph", graph)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (slf *FlowchartRepository) Update(id uint, patch map[string]any) error {
	res := slf.Db.Model(&models.Flowchart{}).Where("id = ?", id).Updates(patch)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (slf *FlowchartRepository) Delete(id uint) error {
	res := slf.Db.Delete(&models.Flowchart{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
