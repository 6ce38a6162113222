package model

import "strings"

// Department groups the conditions it treats and the designations its staff hold.
type Department struct {
	Name         string   `json:"name"`
	Conditions   []string `json:"conditions"`
	Designations []string `json:"designations"`
}

// departments is kept in display order; DepartmentForCondition relies on each
// condition appearing under exactly one department.
var departments = []Department{
	{
		Name: "Cardiology",
		Conditions: []string{
			"Heart Attack", "Arrhythmia", "Hypertension", "Angina",
			"Congenital Heart Disease", "Heart Failure", "Coronary Artery Disease", "Valvular Heart Disease",
		},
		Designations: []string{
			"Cardiologist", "Cardiac Surgeon", "Senior Cardiologist", "Interventional Cardiologist",
			"Pediatric Cardiologist", "Electrophysiologist", "Head of Cardiology",
		},
	},
	{
		Name: "Neurology",
		Conditions: []string{
			"Stroke", "Epilepsy", "Brain Tumor", "Parkinson's Disease",
			"Multiple Sclerosis", "Migraine", "Alzheimer's Disease", "ALS",
		},
		Designations: []string{
			"Neurologist", "Neurosurgeon", "Senior Neurologist", "Pediatric Neurologist",
			"Epileptologist", "Head of Neurology",
		},
	},
	{
		Name: "Orthopedics",
		Conditions: []string{
			"Fracture", "Arthritis", "Dislocation", "Ligament Tear",
			"Joint Replacement", "Osteoporosis", "Scoliosis", "Carpal Tunnel Syndrome",
		},
		Designations: []string{
			"Orthopedic Surgeon", "Sr. Orthopedic Surgeon", "Joint Specialist", "Spine Specialist",
			"Sports Medicine Specialist", "Pediatric Orthopedist", "Head of Orthopedics",
		},
	},
	{
		Name: "Gastroenterology",
		Conditions: []string{
			"Ulcers", "Hepatitis", "IBS", "Gallstones",
			"Pancreatitis", "GERD", "Crohn's Disease", "Colon Cancer",
		},
		Designations: []string{
			"Gastroenterologist", "Hepatologist", "Senior Gastroenterologist", "Pediatric Gastroenterologist",
			"Endoscopist", "Head of Gastroenterology",
		},
	},
	{
		Name: "Oncology",
		Conditions: []string{
			"Breast Cancer", "Lung Cancer", "Leukemia", "Skin Cancer",
			"Brain Cancer", "Prostate Cancer", "Lymphoma", "Ovarian Cancer",
		},
		Designations: []string{
			"Oncologist", "Radiation Oncologist", "Medical Oncologist", "Surgical Oncologist",
			"Pediatric Oncologist", "Hematologist", "Head of Oncology",
		},
	},
	{
		Name: "Gynecology",
		Conditions: []string{
			"PCOD", "Fibroids", "Endometriosis", "Pregnancy",
			"Infertility", "Menopause", "Ovarian Cysts", "Cervical Cancer",
		},
		Designations: []string{
			"Gynecologist", "Obstetrician", "Senior Gynecologist", "Reproductive Endocrinologist",
			"Gynecologic Oncologist", "Urogynecologist", "Head of Gynecology",
		},
	},
	{
		Name: "Dermatology",
		Conditions: []string{
			"Acne", "Eczema", "Psoriasis", "Fungal Infection",
			"Skin Allergy", "Melanoma", "Rosacea", "Vitiligo",
		},
		Designations: []string{
			"Dermatologist", "Cosmetic Dermatologist", "Pediatric Dermatologist", "Dermatopathologist",
			"Mohs Surgeon", "Head of Dermatology",
		},
	},
	{
		Name: "Psychiatry",
		Conditions: []string{
			"Depression", "Anxiety", "Bipolar Disorder", "Schizophrenia",
			"PTSD", "OCD", "ADHD", "Eating Disorders",
		},
		Designations: []string{
			"Psychiatrist", "Clinical Psychologist", "Child Psychiatrist", "Geriatric Psychiatrist",
			"Addiction Psychiatrist", "Head of Psychiatry",
		},
	},
	{
		Name: "General Surgery",
		Conditions: []string{
			"Appendicitis", "Hernia", "Gallbladder", "Tonsillitis",
			"Hemorrhoids", "Varicose Veins", "Thyroid Disorders", "Breast Surgery",
		},
		Designations: []string{
			"General Surgeon", "Laparoscopic Surgeon", "Trauma Surgeon", "Pediatric Surgeon",
			"Colorectal Surgeon", "Head of Surgery",
		},
	},
}

// Genders offered by the registration form.
var Genders = []string{"male", "female", "other"}

// BloodGroups offered by the patient registration form.
var BloodGroups = []string{"A+", "A-", "B+", "B-", "O+", "O-", "AB+", "AB-"}

// ClinicSlots are the 30 minute ranges a patient can book with a doctor.
var ClinicSlots = []string{
	"9:00 AM - 9:30 AM",
	"9:30 AM - 10:00 AM",
	"10:00 AM - 10:30 AM",
	"11:30 AM - 12:00 PM",
	"12:00 PM - 12:30 PM",
	"2:00 PM - 2:30 PM",
	"2:30 PM - 3:00 PM",
	"3:00 PM - 3:30 PM",
	"6:00 PM - 6:30 PM",
	"6:30 PM - 7:00 PM",
	"7:00 PM - 7:30 PM",
}

// QuickSlots are the hourly ranges of the quick booking form.
var QuickSlots = []string{
	"09:00 - 10:00",
	"10:00 - 11:00",
	"11:00 - 12:00",
	"14:00 - 15:00",
	"15:00 - 16:00",
	"16:00 - 17:00",
}

// Departments returns a copy of the department table in display order.
func Departments() []Department {
	out := make([]Department, len(departments))
	for i, d := range departments {
		out[i] = Department{
			Name:         d.Name,
			Conditions:   append([]string(nil), d.Conditions...),
			Designations: append([]string(nil), d.Designations...),
		}
	}
	return out
}

// DepartmentNames lists department names in display order.
func DepartmentNames() []string {
	names := make([]string, len(departments))
	for i, d := range departments {
		names[i] = d.Name
	}
	return names
}

// DepartmentForCondition returns the department treating condition, or "" if
// no department lists it.
func DepartmentForCondition(condition string) string {
	for _, d := range departments {
		for _, c := range d.Conditions {
			if c == condition {
				return d.Name
			}
		}
	}
	return ""
}

// DesignationsFor returns the designations of a department, nil for unknown ones.
func DesignationsFor(department string) []string {
	for _, d := range departments {
		if d.Name == department {
			return append([]string(nil), d.Designations...)
		}
	}
	return nil
}

// IsClinicSlot reports whether slot is one of ClinicSlots.
func IsClinicSlot(slot string) bool {
	for _, s := range ClinicSlots {
		if s == slot {
			return true
		}
	}
	return false
}

// DepartmentDisplayName normalizes a department as the doctor directory shows it.
func DepartmentDisplayName(department string) string {
	switch {
	case strings.EqualFold(department, "ortho"):
		return "Orthopedics"
	case department == "":
		return "General"
	default:
		return department
	}
}
