package endpoint

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/otscheduler/portal/config"
	"github.com/otscheduler/portal/model"
	"github.com/otscheduler/portal/util"
)

type roleOption struct {
	Value model.Role `json:"value"`
	Label string     `json:"label"`
}

// FormOptions lists every fixed choice the portal's forms offer.
type FormOptions struct {
	Roles         []roleOption `json:"roles"`
	Departments   []string     `json:"departments"`
	Genders       []string     `json:"genders"`
	BloodGroups   []string     `json:"bloodGroups"`
	ClinicSlots   []string     `json:"clinicSlots"`
	QuickSlots    []string     `json:"quickSlots"`
	StatusOptions []string     `json:"statusOptions"`
}

// Welcome godoc
// @Summary      Portal welcome
// @Tags         Catalog
// @Produce      json
// @Success      200 {object} util.APIResponse
// @Router       / [get]
func Welcome(c *gin.Context) {
	cfg := config.LoadConfig()
	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  fmt.Sprintf("Welcome to %s!", cfg.AppName),
		Data: map[string]interface{}{"backend": cfg.BackendURL},
	})
}

// ListDepartments godoc
// @Summary      List departments
// @Description  Departments in display order with the conditions they treat and their designations
// @Tags         Catalog
// @Produce      json
// @Success      200 {object} util.APIResponse{data=[]model.Department}
// @Router       /catalog/departments [get]
func ListDepartments(c *gin.Context) {
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Departments retrieved", Data: model.Departments()})
}

// LookupCondition godoc
// @Summary      Department for a condition
// @Tags         Catalog
// @Produce      json
// @Param        condition path string true "Condition name as listed in the catalog"
// @Success      200 {object} util.APIResponse
// @Failure      404 {object} util.APIResponse "No department treats the condition"
// @Router       /catalog/conditions/{condition} [get]
func LookupCondition(c *gin.Context) {
	condition := strings.TrimSpace(c.Param("condition"))
	department := model.DepartmentForCondition(condition)
	if department == "" {
		util.CallErrorNotFound(c, util.APIErrorParams{
			Msg: "No department treats this condition",
			Err: fmt.Errorf("unknown condition %q", condition),
		})
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{
		Msg: "Department found",
		Data: map[string]string{
			"condition":  condition,
			"department": department,
		},
	})
}

// ListFormOptions godoc
// @Summary      Form options
// @Description  Roles, departments, genders, blood groups, clinic and quick booking slots, status transitions
// @Tags         Catalog
// @Produce      json
// @Success      200 {object} util.APIResponse{data=FormOptions}
// @Router       /catalog/slots [get]
func ListFormOptions(c *gin.Context) {
	roles := make([]roleOption, len(model.Roles))
	for i, r := range model.Roles {
		roles[i] = roleOption{Value: r, Label: r.Label()}
	}
	util.CallSuccessOK(c, util.APISuccessParams{
		Msg: "Form options retrieved",
		Data: FormOptions{
			Roles:         roles,
			Departments:   model.DepartmentNames(),
			Genders:       model.Genders,
			BloodGroups:   model.BloodGroups,
			ClinicSlots:   model.ClinicSlots,
			QuickSlots:    model.QuickSlots,
			StatusOptions: model.StatusOptions,
		},
	})
}
